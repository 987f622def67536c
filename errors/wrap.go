package errors

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Wrapping keeps stack traces from pkg/errors; matching uses the standard library.
var (
	Wrapf     = errors.Wrapf
	Errorf    = errors.Errorf
	New       = errors.New
	WithStack = errors.WithStack

	Is = stderrors.Is
	As = stderrors.As
)
