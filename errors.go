package zspatial

import (
	"errors"
	"fmt"

	"github.com/hupe1980/zspatial/index"
	"github.com/hupe1980/zspatial/join"
	"github.com/hupe1980/zspatial/space"
	"github.com/hupe1980/zspatial/store"
)

var (
	// ErrInvalidSpace is returned for a nil or misconfigured space.
	ErrInvalidSpace = errors.New("invalid space")

	// ErrObjectOutsideSpace is returned when an object does not fit in the
	// index's space.
	ErrObjectOutsideSpace = errors.New("object outside space")

	// ErrDuplicate is returned when an object is added twice.
	ErrDuplicate = errors.New("duplicate object")

	// ErrInvalidID is returned for objects with a negative id.
	ErrInvalidID = errors.New("invalid object id")

	// ErrSpaceMismatch is returned when joining indexes over different spaces.
	ErrSpaceMismatch = errors.New("space mismatch")

	// ErrClosed is returned by operations on a closed Index.
	ErrClosed = errors.New("index closed")
)

// ObjectError reports the object an operation failed for.
//
// The original underlying error can be accessed via errors.Unwrap.
type ObjectError struct {
	Op    string
	ID    int64
	cause error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("%s object %d: %v", e.Op, e.ID, e.cause)
}

func (e *ObjectError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, space.ErrInvalidConfig):
		return fmt.Errorf("%w: %w", ErrInvalidSpace, err)
	case errors.Is(err, space.ErrOutsideSpace):
		return fmt.Errorf("%w: %w", ErrObjectOutsideSpace, err)
	case errors.Is(err, store.ErrDuplicateKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case errors.Is(err, index.ErrInvalidID):
		return fmt.Errorf("%w: %w", ErrInvalidID, err)
	case errors.Is(err, join.ErrSpaceMismatch):
		return fmt.Errorf("%w: %w", ErrSpaceMismatch, err)
	}

	return err
}

func objectError(op string, id int64, err error) error {
	if err == nil {
		return nil
	}
	return &ObjectError{Op: op, ID: id, cause: translateError(err)}
}
