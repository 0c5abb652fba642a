// Package errors provides the error kinds for storefront core operations.
// Exactly two failure kinds cross the core's boundary: FetchError for the
// remote catalog and StorageError for the local store.
package errors

import (
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")

// FetchError reports a failed call to the remote catalog service: a request
// that never completed, a non-2xx response, or a malformed payload.
// Status carries the HTTP status code, or 0 when no response was received.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("catalog fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetch wraps err as a FetchError for the given request URL.
func NewFetch(url string, status int, err error) *FetchError {
	return &FetchError{URL: url, Status: status, Err: err}
}

// StorageError reports a local persistence failure: serialization, I/O or a
// failed statement. Op names the store operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorage wraps err as a StorageError for the given store operation.
func NewStorage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
