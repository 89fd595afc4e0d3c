package grid

import "errors"

var (
	ErrInvalidRating   = errors.New("rating must be Low, Medium or High")
	ErrInvalidPosition = errors.New("grid position must be between 1 and 9")
)
