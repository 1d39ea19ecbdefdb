package repository

import "errors"

// Sentinel errors returned by stores.
var (
	ErrNotFound    = errors.New("identity not found")
	ErrInvalidPage = errors.New("invalid page bounds")
	ErrUnknownView = errors.New("unknown view")
	ErrStoreClosed = errors.New("store closed")
)
