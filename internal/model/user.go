package model

// User is the only persisted entity. ID is immutable once created.
// This is a pure domain model with no persistence-specific tags; each store
// maps it to its own record shape.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Avatar string `json:"avatar,omitempty"`
}

// UserCreate is the request shape for creating a user.
// Age is a pointer so a missing age is distinguishable from zero.
type UserCreate struct {
	ID     string  `json:"id" validate:"required"`
	Name   string  `json:"name" validate:"required"`
	Age    *int    `json:"age" validate:"required,gte=0"`
	Avatar *string `json:"avatar,omitempty" validate:"omitnil,url"`
}

// User converts a validated create request into the stored record.
func (c UserCreate) User() User {
	u := User{ID: c.ID, Name: c.Name}
	if c.Age != nil {
		u.Age = *c.Age
	}
	if c.Avatar != nil {
		u.Avatar = *c.Avatar
	}
	return u
}

// UserPatch is a partial update. Nil fields are left untouched in storage.
// At least one field must be set; see validation.Validator.
type UserPatch struct {
	Name   *string `json:"name,omitempty" validate:"omitnil,min=1"`
	Age    *int    `json:"age,omitempty" validate:"omitnil,gte=0"`
	Avatar *string `json:"avatar,omitempty" validate:"omitnil,url"`
}

// Empty reports whether no field is set.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Age == nil && p.Avatar == nil
}

// UserList is the response body of the list endpoint.
type UserList struct {
	Items []User `json:"items"`
}
