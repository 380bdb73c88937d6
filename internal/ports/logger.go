package ports

import "github.com/bft-labs/helmsman/pkg/log"

// Logger is the structured logging boundary for the application layer.
// It aliases the pkg/log interface so adapters written against either name
// are interchangeable.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported for the application layer.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
