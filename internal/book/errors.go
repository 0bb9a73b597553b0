package book

import "errors"

var (
	// ErrNotFound is returned when no lookup source knows the ISBN.
	ErrNotFound = errors.New("book not found")

	// ErrInvalidArgument is returned when a caller breaks a contract, such as
	// passing a record without an ISBN. It is distinct from data that merely
	// looks wrong, which is reported through advisories.
	ErrInvalidArgument = errors.New("invalid argument")
)
