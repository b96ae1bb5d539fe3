package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey int

const (
	AppKey ContextKey = iota
	LoggerKey
	PoolKey
	TxKey
	ParamsKey
	UserKey
	SessionKey
	ScopeKey
	RequestStart
)

var Validate = validator.New()
