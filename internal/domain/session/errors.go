package session

import "errors"

var (
	ErrNoDataset       = errors.New("no dataset has been imported")
	ErrSessionNotFound = errors.New("session snapshot not found")
	ErrPersistenceOff  = errors.New("session persistence is disabled")
)
