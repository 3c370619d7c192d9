package assets

import "errors"

var (
	ErrLoadFailed = errors.New("assets: load failed")

	errNoModel = errors.New("loader returned no model")
)
