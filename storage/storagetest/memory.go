// Package storagetest provides an in-memory storage.ObjectStore for tests.
package storagetest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"mediagate/storage"
)

// Object is a stored blob.
type Object struct {
	Data        []byte
	ContentType string
	Session     string
}

// Memory is an in-memory ObjectStore. Failure hooks let tests force errors.
type Memory struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]Object

	// AuthorizeErr, when set, is returned by Authorize.
	AuthorizeErr error
	// FailUpload returns a non-nil error to make the upload of key fail.
	FailUpload func(key string) error
	// ExistsErr returns a non-nil error to make Exists fail for key.
	ExistsErr func(key string) error

	uploads int
}

var _ storage.ObjectStore = (*Memory)(nil)

// NewMemory creates an empty store for bucket.
func NewMemory(bucket string) *Memory {
	return &Memory{bucket: bucket, objects: make(map[string]Object)}
}

func (m *Memory) Bucket() string { return m.bucket }

func (m *Memory) Authorize(ctx context.Context) (storage.Credentials, error) {
	if m.AuthorizeErr != nil {
		return storage.Credentials{}, m.AuthorizeErr
	}
	return storage.Credentials{Endpoint: "memory://", Bucket: m.bucket, AuthorizedAt: time.Now()}, nil
}

func (m *Memory) UploadTarget(ctx context.Context, bucket string) (storage.UploadTarget, error) {
	if bucket == "" {
		bucket = m.bucket
	}
	return storage.UploadTarget{Bucket: bucket, URL: "memory://" + bucket, Token: "session"}, nil
}

func (m *Memory) Upload(ctx context.Context, target storage.UploadTarget, key string, r io.Reader, size int64, contentType string) error {
	m.mu.Lock()
	m.uploads++
	m.mu.Unlock()
	if m.FailUpload != nil {
		if err := m.FailUpload(key); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.Put(key, Object{Data: data, ContentType: contentType, Session: target.Token})
	return nil
}

func (m *Memory) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if bucket == "" {
		bucket = m.bucket
	}
	if _, ok := m.Get(key); !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return fmt.Sprintf("https://store.test/%s/%s?expires=%d", bucket, key, int(ttl.Seconds())), nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsErr != nil {
		if err := m.ExistsErr(key); err != nil {
			return false, err
		}
	}
	_, ok := m.Get(key)
	return ok, nil
}

// Put stores an object directly.
func (m *Memory) Put(key string, obj Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = obj
}

// Get returns the object stored under key.
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Delete removes key.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}

// Len is the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Uploads counts Upload calls, failed ones included.
func (m *Memory) Uploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}
