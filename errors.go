package krate

import "fmt"

// StorageError reports a durable-medium failure during a store operation.
// Never retried internally.
type StorageError struct {
	Op  string // "put", "get", "remove", "keys", "modifieds", "modified"
	Key string // empty for listing operations
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("krate: storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("krate: storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SerializationError reports a serializer or interceptor failure while
// encoding or decoding a record. No partial record is ever committed.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("krate: serialize %q: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// FetchError reports a failure raised by a caller-supplied fetch function
// inside GetAndFetch or GetOrFetch. Delivered to the combinator's consumer
// after any cached value already emitted; never suppressed.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("krate: fetch %q: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
