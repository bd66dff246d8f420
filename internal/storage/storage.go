// Package storage addresses pipeline artifacts as "<family>/<name>" keys
// under a project-scoped base location. Local directories, Google Cloud
// Storage buckets and Azure Blob containers are supported.
package storage

import (
	"context"
	"path"
	"strings"
)

// Storage reads and writes objects relative to one base location. Writes
// overwrite, so the last write of a key wins.
type Storage interface {
	// Read returns the object at key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write stores data at key with the given content type.
	Write(ctx context.Context, key string, data []byte, contentType string) error
	// List returns the names of the objects directly under prefix, sorted.
	// A missing prefix yields an empty list.
	List(ctx context.Context, prefix string) ([]string, error)
	// CreateBase provisions the base location if it does not exist yet.
	CreateBase(ctx context.Context) error
	// URI is the base location this storage is bound to.
	URI() string
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." || seg == "." {
			return ErrInvalidKey
		}
	}
	if strings.Contains(key, `\`) || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	return nil
}

// dirPrefix normalizes a list prefix to "a/b/" form, or "" for the root.
func dirPrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// childName returns the name of object relative to the listed prefix. It
// reports false for folder placeholders and objects in nested folders.
func childName(prefix, object string) (string, bool) {
	rel := strings.TrimPrefix(object, prefix)
	if rel == "" || strings.Contains(rel, "/") {
		return "", false
	}
	return rel, true
}

// joinKey joins an object prefix inside a bucket or container with key.
func joinKey(base, key string) string {
	if base == "" {
		return key
	}
	return path.Join(base, key)
}
