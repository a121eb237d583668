// Package s3test provides an S3 client and scratch bucket for tests. By
// default it serves an in-memory fake; setting SVO_TEST_S3_ENDPOINT runs
// against a real endpoint instead.
package s3test

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"net/http/httptest"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

const notAWS = "not-using-AWS"

// Client returns a client, the name of an empty bucket and a function that
// empties the bucket, deletes it if Client created it, and shuts down any
// fake server.
func Client() (*s3.S3, string, func()) {
	var (
		client *s3.S3
		stop   = func() {}
	)
	if endpoint := os.Getenv("SVO_TEST_S3_ENDPOINT"); endpoint != "" {
		client = endpointClient(endpoint)
	} else {
		client, stop = fakeClient()
	}

	bucketName := os.Getenv("SVO_TEST_S3_BUCKET")
	created := bucketName == ""
	if created {
		bucketName = randBucketName()
		if _, err := client.CreateBucket(&s3.CreateBucketInput{Bucket: &bucketName}); err != nil {
			panic(err)
		}
	} else if err := emptyBucket(client, bucketName); err != nil {
		panic(err)
	}

	return client, bucketName, func() {
		_ = emptyBucket(client, bucketName)
		if created {
			_, _ = client.DeleteBucket(&s3.DeleteBucketInput{Bucket: &bucketName})
		}
		stop()
	}
}

func fakeClient() (*s3.S3, func()) {
	ts := httptest.NewServer(gofakes3.New(s3mem.New()).Server())
	sess := session.Must(session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials("TEST-ACCESSKEYID", "TEST-SECRETACCESSKEY", ""),
		Endpoint:         aws.String(ts.URL),
		Region:           aws.String("ca-west-1"),
		DisableSSL:       aws.Bool(true),
		S3ForcePathStyle: aws.Bool(true),
	}))
	return s3.New(sess), ts.Close
}

// endpointClient talks to a real service. With AWS_REGION set the SDK
// resolves the endpoint itself; otherwise the region only has to be
// nonempty.
func endpointClient(endpoint string) *s3.S3 {
	config := &aws.Config{
		Credentials: credentials.NewStaticCredentials(
			mustEnv("AWS_ACCESS_KEY_ID"),
			mustEnv("AWS_SECRET_ACCESS_KEY"),
			os.Getenv("AWS_SESSION_TOKEN"),
		),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(notAWS),
		S3ForcePathStyle: aws.Bool(true),
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.Region = aws.String(region)
		config.Endpoint = nil
	}
	return s3.New(session.Must(session.NewSession(config)))
}

func mustEnv(key string) string {
	res := os.Getenv(key)
	if res == "" {
		panic(fmt.Sprintf("environment '%s' unset", key))
	}
	return res
}

func randBucketName() string {
	i, err := rand.Int(rand.Reader, big.NewInt(math.MaxUint32))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("svo-test-%s", i)
}

func emptyBucket(client *s3.S3, bucket string) error {
	var keys []*s3.ObjectIdentifier
	err := client.ListObjectsV2Pages(&s3.ListObjectsV2Input{Bucket: &bucket},
		func(page *s3.ListObjectsV2Output, last bool) bool {
			for _, object := range page.Contents {
				keys = append(keys, &s3.ObjectIdentifier{Key: object.Key})
			}
			return true
		})
	if err != nil {
		return err
	}
	for len(keys) > 0 {
		n := min(len(keys), 1000)
		_, err := client.DeleteObjects(&s3.DeleteObjectsInput{
			Bucket: &bucket,
			Delete: &s3.Delete{Objects: keys[:n]},
		})
		if err != nil {
			return err
		}
		keys = keys[n:]
	}
	return nil
}
