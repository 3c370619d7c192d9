package catalog

import "errors"

var (
	ErrInvalidProduct   = errors.New("invalid product")
	ErrDuplicateProduct = errors.New("duplicate product key")
)
