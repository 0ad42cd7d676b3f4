package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// priorities accepted for notes.
var priorities = []any{"HIGH", "MEDIUM", "LOW"}

// reservedRoles are JWT registered claim names; a role claim under one of
// these would shadow the token structure.
var reservedRoles = []any{"sub", "iss", "aud", "exp", "nbf", "iat", "jti"}

type registerRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Length(2, 64)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.Role, validation.Required, validation.NotIn(reservedRoles...)),
	)
}

type updateUserRequest struct {
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r updateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Length(8, 72)),
		validation.Field(&r.Role, validation.NotIn(reservedRoles...)),
	)
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type createNoteRequest struct {
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func (r createNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Priority, validation.In(priorities...)),
	)
}

type updateNoteRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
}

func (r updateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 256)),
		validation.Field(&r.Priority, validation.NilOrNotEmpty, validation.In(priorities...)),
	)
}

type categoryRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
}

func (r categoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 128)),
	)
}

type reminderRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	CreatedBy   string `json:"createdBy"`
}

func (r reminderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 128)),
	)
}
