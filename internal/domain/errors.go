package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidColumnID = errors.New("invalid column id")
	ErrInvalidWIPLimit = errors.New("invalid wip limit")
	ErrInvalidTag      = errors.New("invalid tag")
)
