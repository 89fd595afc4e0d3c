package movement

import "errors"

var (
	ErrNoActiveMovement = errors.New("employee has no active movement")
	ErrNotInDonutCell   = errors.New("employee is not placed in the donut cell")
)
