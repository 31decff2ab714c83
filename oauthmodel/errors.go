package oauthmodel

import "errors"

var (
	ErrNotAnObject = errors.New("request body must be a JSON object")
)
