package core

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrStorageRead        = errors.New("storage read failed")
	ErrStorageWrite       = errors.New("storage write failed")
)

type StorageOp string

const (
	StorageOpRead  StorageOp = "read"
	StorageOpWrite StorageOp = "write"
)

// StorageError reports a persisted document that could not be read or written.
// errors.Is matches it against ErrStorageRead or ErrStorageWrite depending on Op.
type StorageError struct {
	Op       StorageOp
	Document string
	Err      error
}

func NewStorageReadError(document string, err error) *StorageError {
	return &StorageError{Op: StorageOpRead, Document: document, Err: err}
}

func NewStorageWriteError(document string, err error) *StorageError {
	return &StorageError{Op: StorageOpWrite, Document: document, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Document, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorageRead:
		return e.Op == StorageOpRead
	case ErrStorageWrite:
		return e.Op == StorageOpWrite
	}
	return false
}
