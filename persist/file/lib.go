// Package file stores svo snapshots as files in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrhy/svo"
	"go.uber.org/zap"
)

// Persist implements svo.Persist with one file per snapshot.
type Persist struct {
	basepath string
	logger   *zap.Logger
}

var _ svo.Persist = Persist{}

func (p Persist) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	return filepath.Join(p.basepath, name), nil
}

// Load reads the snapshot stored under name, wrapping svo.ErrNotFound if
// there is none.
func (p Persist) Load(ctx context.Context, name string) ([]byte, error) {
	path, err := p.path(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, svo.ErrNotFound)
	}
	return b, err
}

// Store writes the snapshot unless a file of that name already exists.
// Names are content hashes, so an existing file already holds the bytes.
// The file is written under a temporary name and renamed into place, so
// readers never see a partial snapshot.
func (p Persist) Store(ctx context.Context, name string, b []byte) error {
	path, err := p.path(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	tmp, err := os.CreateTemp(p.basepath, "."+name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	p.logger.Debug("stored snapshot", zap.String("path", path), zap.Int("bytes", len(b)))
	return nil
}

// NewPersistForPath returns a Persist that loads and stores snapshots as
// files in the directory at the given path.
//
//	p := NewPersistForPath("/var/db/world")
//	root, err := svo.Save(ctx, store, &svo.RemoteConfig[Block]{StoreImmutablePartsWith: p})
func NewPersistForPath(path string) Persist {
	return Persist{basepath: path, logger: zap.NewNop()}
}

// WithLogger returns a copy of p that logs stores to logger.
func (p Persist) WithLogger(logger *zap.Logger) Persist {
	p.logger = logger
	return p
}
