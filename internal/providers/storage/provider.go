// Package storage stores media files (product images, company hero) on local
// disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"strings"
)

// Provider writes and removes objects addressed by slash-separated keys such
// as "products/wagyu/wagyu_0.jpg".
type Provider interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

var ErrInvalidKey = errors.New("invalid_storage_key")

// CleanKey rejects absolute keys and parent traversal.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return "", ErrInvalidKey
		}
	}
	return key, nil
}

// DeleteAll removes every key, returning the first error after trying all.
func DeleteAll(ctx context.Context, p Provider, keys ...string) error {
	var first error
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := p.Delete(ctx, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}
