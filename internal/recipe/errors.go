package recipe

import "errors"

var (
	ErrParse        = errors.New("recipe parse failed")
	ErrUndefinedVar = errors.New("undefined recipe variable")
	ErrVarCycle     = errors.New("recipe variable cycle")
	ErrInvalidStep  = errors.New("invalid recipe step")
	ErrBuildOrder   = errors.New("invalid build order")
)
