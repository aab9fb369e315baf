package repository

import "errors"

// ErrNotFound is returned when a record with the requested id does not exist.
var ErrNotFound = errors.New("record not found")
