package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig     = fmt.Errorf("mcpchat: invalid config")
	ErrNotFound          = fmt.Errorf("mcpchat: not found")
	ErrEmptyText         = fmt.Errorf("mcpchat: empty text")
	ErrToolUnavailable   = fmt.Errorf("mcpchat: tool unavailable")
	ErrDimensionMismatch = fmt.Errorf("mcpchat: embedding dimension mismatch")
	ErrToolFailed        = fmt.Errorf("mcpchat: tool call failed")
	ErrSessionClosed     = fmt.Errorf("mcpchat: session closed")
)
