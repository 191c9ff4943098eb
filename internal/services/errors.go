package services

import "errors"

var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrUnknownPayment   = errors.New("unknown payment type")
	ErrNoPending        = errors.New("no pending confirmation")
)
