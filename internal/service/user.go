package service

import (
	"context"
	"fmt"

	"userapi/internal/model"
	"userapi/internal/repository"
	"userapi/internal/validation"
)

// UserService defines the user use cases. Every operation validates its input
// first and then makes exactly one repository call.
type UserService interface {
	// Create stores a new user and echoes it back. An existing id yields repository.ErrAlreadyExists.
	Create(ctx context.Context, in model.UserCreate) (*model.User, error)

	// List returns at most repository.ScanLimit users in no particular order.
	List(ctx context.Context) (*model.UserList, error)

	// Get returns a single user by id.
	Get(ctx context.Context, id string) (*model.User, error)

	// Update applies the supplied fields and returns the post-update record.
	Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error)

	// Delete removes a user. A missing user yields repository.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Ready reports whether the document store is reachable.
	Ready(ctx context.Context) error
}

type userService struct {
	repo repository.UserRepository
	val  *validation.Validator
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository, val *validation.Validator) UserService {
	return &userService{repo: repo, val: val}
}

func (s *userService) Create(ctx context.Context, in model.UserCreate) (*model.User, error) {
	if err := s.val.Struct(in); err != nil {
		return nil, err
	}
	u := in.User()
	if err := s.repo.Create(ctx, &u); err != nil {
		return nil, fmt.Errorf("create user %q: %w", u.ID, err)
	}
	return &u, nil
}

func (s *userService) List(ctx context.Context) (*model.UserList, error) {
	items, err := s.repo.List(ctx, repository.ScanLimit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if items == nil {
		items = []model.User{}
	}
	return &model.UserList{Items: items}, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", id, err)
	}
	return u, nil
}

// Update validates p before the store is consulted, so an invalid patch is a
// validation error even when id does not exist.
func (s *userService) Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if err := s.val.Struct(p); err != nil {
		return nil, err
	}
	u, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("update user %q: %w", id, err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %q: %w", id, err)
	}
	return nil
}

func (s *userService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func requireID(id string) error {
	if id == "" {
		return validation.NewError("id", "required", "id is required")
	}
	return nil
}
