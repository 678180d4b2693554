package storage

import "errors"

// ErrReadOnly is returned when a View tries to write
var ErrReadOnly = errors.New("write in read-only unit of work")
