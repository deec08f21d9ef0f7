// Package sink delivers reconstructed files to a storage backend.
//
// A Sink wraps a lode Store behind lazy initialization: the store is built
// on first Put, so configuring an unreachable backend costs nothing until a
// decode actually succeeds. Backends: fs (directory on local disk), s3
// (AWS or any S3-compatible endpoint), memory (tests).
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/justapithecus/lode/lode"
)

// Backend names accepted by New.
const (
	BackendFS     = "fs"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// ErrBadFilename rejects delivery names that would escape the store root.
var ErrBadFilename = errors.New("filename must not contain path separators or \"..\"")

// Sink delivers whole files to a storage backend.
type Sink interface {
	// Name returns the backend name for logs and metrics.
	Name() string
	// Put writes data under filename. The filename must not contain path
	// separators or "..".
	Put(ctx context.Context, filename string, data []byte) error
}

// storeSink adapts a lode StoreFactory to the Sink interface with lazy
// store initialization.
type storeSink struct {
	backend string
	factory lode.StoreFactory

	storeOnce sync.Once
	store     lode.Store
	storeErr  error
}

// NewFS creates a Sink writing into a directory on the local filesystem.
func NewFS(root string) Sink {
	return &storeSink{backend: BackendFS, factory: lode.NewFSFactory(root)}
}

// NewMemory creates an in-memory Sink for tests.
func NewMemory() Sink {
	return &storeSink{backend: BackendMemory, factory: lode.NewMemoryFactory()}
}

// New creates a Sink from a backend name and backend-specific path:
// a root directory for fs, "bucket" or "bucket/prefix" for s3, unused
// for memory.
func New(backend, path string, s3cfg S3Config) (Sink, error) {
	switch backend {
	case BackendFS:
		if path == "" {
			return nil, errors.New("fs sink requires a root directory")
		}
		return NewFS(path), nil
	case BackendS3:
		bucket, prefix := ParseS3Path(path)
		s3cfg.Bucket = bucket
		s3cfg.Prefix = prefix
		return NewS3(s3cfg)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown sink backend %q", backend)
	}
}

// Name returns the backend name.
func (s *storeSink) Name() string {
	return s.backend
}

// Put writes data under filename via the lazily initialized store.
func (s *storeSink) Put(ctx context.Context, filename string, data []byte) error {
	if err := validateFilename(filename); err != nil {
		return err
	}

	store, err := s.getOrCreateStore()
	if err != nil {
		return fmt.Errorf("sink store init failed: %w", err)
	}

	if err := store.Put(ctx, filename, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("sink put %s: %w", filename, err)
	}
	return nil
}

// getOrCreateStore lazily initializes the Store from the factory.
func (s *storeSink) getOrCreateStore() (lode.Store, error) {
	s.storeOnce.Do(func() {
		s.store, s.storeErr = s.factory()
	})
	return s.store, s.storeErr
}

func validateFilename(filename string) error {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return fmt.Errorf("%w: %q", ErrBadFilename, filename)
	}
	return nil
}
