package errors

import "errors"

var ErrNotFound = errors.New("restaurant not found")
