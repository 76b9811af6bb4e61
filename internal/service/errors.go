package service

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrProductNotFound = errors.New("product not found")
	ErrProductInactive = errors.New("product inactive")
	ErrInvalidQuantity = errors.New("invalid quantity")
)
