package database

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrNotFound means the addressed document does not exist. Malformed ids
// are reported the same way.
var ErrNotFound = errors.New("document not found")

// ErrDuplicate is wrapped in a StoreError when a unique index rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// StoreError wraps an unexpected storage failure with enough context to
// diagnose it from the server log. Its text is never sent to clients.
type StoreError struct {
	Op       string
	Resource string
	ID       string
	Err      error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op, resource, id string, err error) error {
	return &StoreError{Op: op, Resource: resource, ID: id, Err: err}
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	return strings.Contains(err.Error(), "E11000 duplicate key error")
}
