package cowarray

import (
	"errors"

	"github.com/Determinant/cordwood/pkg/local_object_storage/util/logicerr"
)

var (
	// ErrOutOfBounds is returned when requested index is not less than the
	// array length.
	ErrOutOfBounds = logicerr.New("index out of bounds")

	// ErrStore wraps failures of the underlying object store.
	ErrStore = errors.New("object store failure")

	// ErrFormat wraps failures of writing the human-readable array form.
	ErrFormat = errors.New("could not format array")

	// ErrStructure is returned when the root or its target is a record of
	// unexpected kind.
	ErrStructure = errors.New("broken array structure")
)
