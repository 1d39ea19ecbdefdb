package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrEmptyBatch         = errors.New("batch has no records")
	ErrReconcileRunning   = errors.New("reconcile already running")
	ErrNothingToReconcile = errors.New("no staged records or sources")
)
