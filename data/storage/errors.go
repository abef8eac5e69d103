package storage

import "errors"

// ErrNotFound means the backend holds no document yet, a first run.
var ErrNotFound = errors.New("error no portfolio document stored")
