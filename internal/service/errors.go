package service

import "errors"

var (
	ErrNotFound        = errors.New("error not found")
	ErrForbidden       = errors.New("error portfolio belongs to another owner")
	ErrInvalidArgument = errors.New("error invalid argument")
)
