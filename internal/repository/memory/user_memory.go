// Package memory provides an in-process repository.UserRepository with the same
// conditional-write semantics as the real stores. It backs STORE_BACKEND=memory
// for local runs and the service-level property tests.
package memory

import (
	"context"
	"sync"

	"userapi/internal/model"
	"userapi/internal/repository"
)

// UserMemory is safe for concurrent use.
type UserMemory struct {
	mu    sync.RWMutex
	users map[string]model.User
}

var _ repository.UserRepository = (*UserMemory)(nil)

// NewUserMemory returns an empty store.
func NewUserMemory() *UserMemory {
	return &UserMemory{users: make(map[string]model.User)}
}

func (r *UserMemory) Create(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return repository.ErrAlreadyExists
	}
	r.users[u.ID] = *u
	return nil
}

func (r *UserMemory) FindByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// List relies on map iteration order, so like a table scan it has no ordering guarantee.
func (r *UserMemory) List(ctx context.Context, limit int) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]model.User, 0, min(limit, len(r.users)))
	for _, u := range r.users {
		if len(items) == limit {
			break
		}
		items = append(items, u)
	}
	return items, nil
}

func (r *UserMemory) Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	if p.Empty() {
		return nil, repository.ErrEmptyPatch
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	r.users[id] = u
	return &u, nil
}

func (r *UserMemory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserMemory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the number of stored users.
func (r *UserMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
