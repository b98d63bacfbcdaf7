package core

import "fmt"

// ImageDecodeError wraps a failure from the external image decoder
// collaborator.
type ImageDecodeError struct {
	Err error
}

func (e *ImageDecodeError) Error() string { return fmt.Sprintf("image decode failed: %v", e.Err) }
func (e *ImageDecodeError) Unwrap() error { return e.Err }

// ParamError signals a missing or malformed request argument.
type ParamError struct {
	Message string
}

func (e *ParamError) Error() string { return e.Message }

// NotFoundError signals that a lookup by post id found nothing live.
type NotFoundError struct {
	PostID int64
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("post_id %d not found", e.PostID) }

// StorageError wraps any fault surfaced by the persistent store.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage error: %v", e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// FatalError signals an invariant violation the process cannot recover
// from: an unexpected bucket shape, or an invalid internal index found
// during load.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string { return "fatal: " + e.Message }
