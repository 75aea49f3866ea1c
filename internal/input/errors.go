package input

import "errors"

// ErrEmptyInput is returned when the raw input holds no URL lines.
var ErrEmptyInput = errors.New("input is empty")
