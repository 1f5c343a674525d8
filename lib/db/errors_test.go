package db

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		err  error
		pred func(error) bool
		want bool
	}{
		{NewError(RetCKeyNotFound, "missing"), IsKeyNotFound, true},
		{NewError(RetCKeyNotFound, "missing"), IsStorage, false},
		{NewError(RetCCollectionNotFound, "missing"), IsCollectionNotFound, true},
		{WrapError(RetCStorage, "open", errors.New("io")), IsStorage, true},
		{WrapError(RetCSerialization, "encode", errors.New("bad")), IsSerialization, true},
		{errors.New("plain"), IsKeyNotFound, false},
		{nil, IsStorage, false},
	}

	for _, tt := range tests {
		if got := tt.pred(tt.err); got != tt.want {
			t.Errorf("predicate on %v: expected %v, got %v", tt.err, tt.want, got)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(RetCStorage, "set", cause)

	if !errors.Is(err, cause) {
		t.Errorf("Expected errors.Is to find the cause")
	}

	// predicates see through further wrapping
	wrapped := fmt.Errorf("outer: %w", err)
	if !IsStorage(wrapped) {
		t.Errorf("Expected IsStorage to see through fmt.Errorf wrapping")
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError(RetCKeyNotFound, "key \"a\" not found")
	if msg := err.Error(); msg == "" {
		t.Errorf("Expected a non-empty message")
	}

	withCause := WrapError(RetCStorage, "open", errors.New("io failure"))
	if msg := withCause.Error(); msg == "" {
		t.Errorf("Expected a non-empty message")
	}
}
