package contract

import "errors"

var (
	ErrModelInvoke      = errors.New("model invoke failed")
	ErrSchemaViolation  = errors.New("specialist response violates schema")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrBackingStore     = errors.New("backing store rejected operation")
	ErrValidation       = errors.New("validation failed")
)
