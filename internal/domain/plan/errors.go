package plan

import "errors"

var (
	ErrStateNotFound = errors.New("user plan state not found")
)
