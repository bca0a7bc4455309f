package models

import "errors"

// ErrNotFound is wrapped by every store lookup that finds no matching record.
var ErrNotFound = errors.New("not found")
