package db

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by every Database and Collection
// operation. It wraps a return code (of type RetCode), a message and an
// optional underlying cause.
type Error struct {
	Code  RetCode // The return code
	Msg   string  // The error message
	Cause error   // The underlying error, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("nosqlite: %s: %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("nosqlite: %s: %s", e.Code, e.Msg)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// WrapError creates a new Error with the given code and message around an
// underlying cause.
func WrapError(code RetCode, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Cause: cause}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Operation executed successfully.
	RetCStorage                           // 1: The backing file cannot be opened, created or is corrupted, or a statement failed.
	RetCKeyNotFound                       // 2: A strict single-key operation addressed a missing key.
	RetCCollectionNotFound                // 3: An operation addressed a collection that was never created.
	RetCSerialization                     // 4: A value cannot be serialized, or stored bytes cannot be deserialized.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCStorage:
		return "StorageError"
	case RetCKeyNotFound:
		return "KeyNotFoundError"
	case RetCCollectionNotFound:
		return "CollectionNotFoundError"
	case RetCSerialization:
		return "SerializationError"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Predicates
// --------------------------------------------------------------------------

func hasCode(err error, code RetCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsStorage reports whether err is a StorageError.
func IsStorage(err error) bool { return hasCode(err, RetCStorage) }

// IsKeyNotFound reports whether err is a KeyNotFoundError. Only the strict
// single-item operations (ItemGet, ItemDelete, LastModified) produce it.
func IsKeyNotFound(err error) bool { return hasCode(err, RetCKeyNotFound) }

// IsCollectionNotFound reports whether err is a CollectionNotFoundError.
func IsCollectionNotFound(err error) bool { return hasCode(err, RetCCollectionNotFound) }

// IsSerialization reports whether err is a SerializationError.
func IsSerialization(err error) bool { return hasCode(err, RetCSerialization) }
