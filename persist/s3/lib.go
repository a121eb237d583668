// Package s3 stores svo snapshots as objects in an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/jrhy/svo"
)

// DefaultKnownNames is how many stored or loaded names a Persist remembers
// in order to skip redundant uploads.
const DefaultKnownNames = 1000

type S3Interface interface {
	DeleteObjectWithContext(ctx aws.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error)
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Persist implements svo.Persist with one object per snapshot, named
// Prefix followed by the snapshot name.
type Persist struct {
	s3         S3Interface
	BucketName string
	Prefix     string
	known      *simplelru.LRU
}

var _ svo.Persist = (*Persist)(nil)

func (p *Persist) key(name string) *string {
	return aws.String(p.Prefix + name)
}

// Load fetches the named snapshot, wrapping svo.ErrNotFound if the object
// does not exist.
func (p *Persist) Load(ctx context.Context, name string) ([]byte, error) {
	output, err := p.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: &p.BucketName,
		Key:    p.key(name),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, fmt.Errorf("s3://%s/%s%s: %w", p.BucketName, p.Prefix, name, svo.ErrNotFound)
		}
		return nil, err
	}
	defer output.Body.Close()
	b, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, err
	}
	p.known.Add(name, nil)
	return b, nil
}

// Store uploads the snapshot unless this Persist has recently stored or
// loaded the same name.
func (p *Persist) Store(ctx context.Context, name string, b []byte) error {
	if p.known.Contains(name) {
		return nil
	}
	_, err := p.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: &p.BucketName,
		Key:    p.key(name),
		Body:   bytes.NewReader(b),
	})
	if err != nil {
		return err
	}
	p.known.Add(name, nil)
	return nil
}

// Delete removes the named snapshot, for pruning roots that are no longer
// referenced.
func (p *Persist) Delete(ctx context.Context, name string) error {
	_, err := p.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: &p.BucketName,
		Key:    p.key(name),
	})
	p.known.Remove(name)
	return err
}

// NewPersist returns a Persist that loads and stores snapshots as
// objects with the given S3 client, bucket name and key prefix.
func NewPersist(client S3Interface, bucketName, prefix string) *Persist {
	known, err := simplelru.NewLRU(DefaultKnownNames, nil)
	if err != nil {
		panic(err)
	}
	return &Persist{client, bucketName, prefix, known}
}
