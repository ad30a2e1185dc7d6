// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, dynamodb, memory) inside this directory.
package repository

import (
	"context"
	"errors"

	"userapi/internal/model"
)

// ScanLimit caps List. The scan is best-effort and unordered; there is no cursor.
const ScanLimit = 100

var (
	// ErrNotFound is returned when the target record does not exist, including
	// when an update or delete precondition on existence fails.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when an insert-if-absent finds the id taken.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrEmptyPatch is returned by Update when the patch sets no field.
	ErrEmptyPatch = errors.New("patch sets no field")
)

// UserRepository defines persistence for users. Every mutation is a single
// atomic conditional write; implementations never read-then-write.
type UserRepository interface {
	// Create inserts u only if no record with u.ID exists, else ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error

	// FindByID returns the user or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List returns at most limit users in no particular order.
	List(ctx context.Context, limit int) ([]model.User, error)

	// Update applies the fields set in p to an existing record and returns the
	// full post-update record. Unset fields are left untouched.
	// Returns ErrNotFound if the record does not exist.
	Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error)

	// Delete removes the record only if it exists, else ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
