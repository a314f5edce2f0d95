package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrUnknownFeature   = errors.New("unknown feature")
	ErrProviderFailure  = errors.New("provider failure")
	ErrCheckoutFailure  = errors.New("checkout failure")
)
