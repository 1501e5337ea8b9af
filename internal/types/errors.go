package types

import (
	"errors"
	"fmt"
)

var (
	ErrDataNotFound  = errors.New("data not found")
	ErrInvalidConfig = errors.New("invalid configuration")
)

type LoaderError struct {
	Path string
	Err  error
}

func (e LoaderError) Error() string {
	return fmt.Sprintf("failed to load from %s: %v", e.Path, e.Err)
}

func (e LoaderError) Unwrap() error {
	return e.Err
}
