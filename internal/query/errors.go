package query

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownShape      = errors.New("unknown response shape")
	ErrUnknownSortKey    = errors.New("unknown sort key")
	ErrInvalidOrder      = errors.New("invalid sort order")
	ErrInvalidPagination = errors.New("invalid pagination")
	// ErrRegistry marks an inconsistent entity definition. It is a programmer
	// error and surfaces at startup.
	ErrRegistry = errors.New("entity registry")
)

// InvalidParamError is a client-input error: the request names a shape,
// sort key, or page the entity cannot serve.
type InvalidParamError struct {
	Param  string
	Reason string
	Err    error
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

func (e *InvalidParamError) Unwrap() error { return e.Err }

// IsInvalidParam reports whether err is a client-input error.
func IsInvalidParam(err error) bool {
	var ipe *InvalidParamError
	return errors.As(err, &ipe)
}

func invalidPagination(reason string) error {
	return &InvalidParamError{Param: "pagination", Reason: reason, Err: ErrInvalidPagination}
}
