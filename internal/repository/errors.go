package repository

import "errors"

var (
	ErrNotFound      = errors.New("wish not found")
	ErrAlreadyExists = errors.New("wish already exists")
)
