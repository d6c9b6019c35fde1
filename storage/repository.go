// Package storage provides the record storage abstraction behind accounts
// and directory data.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record or bucket does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned by PutNew when the record is already present.
	ErrExists = errors.New("record already exists")
)

// BatchTx provides writes within an atomic transaction scoped to one bucket.
type BatchTx interface {
	Put(id string, value []byte) error
	Delete(id string) error
}

// Repository stores opaque values by bucket and id.
type Repository interface {
	Put(bucket, id string, value []byte) error
	// PutNew stores value only if no record exists under id.
	PutNew(bucket, id string, value []byte) error
	Get(bucket, id string) ([]byte, error)
	// List returns the ids in bucket in ascending byte order.
	List(bucket string) ([]string, error)
	Delete(bucket, id string) error
	Batch(bucket string, fn func(tx BatchTx) error) error
	Close() error
}

// PutJSON marshals v and stores it under bucket/id.
func PutJSON(r Repository, bucket, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", bucket, id, err)
	}
	return r.Put(bucket, id, data)
}

// PutNewJSON is PutJSON through PutNew.
func PutNewJSON(r Repository, bucket, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", bucket, id, err)
	}
	return r.PutNew(bucket, id, data)
}

// GetJSON loads bucket/id into a new T.
func GetJSON[T any](r Repository, bucket, id string) (T, error) {
	var v T
	data, err := r.Get(bucket, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decoding %s/%s: %w", bucket, id, err)
	}
	return v, nil
}
