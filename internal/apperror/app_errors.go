package apperror

import "errors"

var (
	ErrNamesRequired = errors.New("both player names are required to start")
	ErrNamesLocked   = errors.New("player names can only change before the game starts")
	ErrInvalidCell   = errors.New("invalid cell")
	ErrInvalidPlayer = errors.New("invalid player")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("concurrent update conflict")
)
