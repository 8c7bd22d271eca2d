package meta

import (
	"errors"
)

// ErrInvalidVersion is returned when the database has been created by an
// incompatible version of the storage.
var ErrInvalidVersion = errors.New("invalid metabase version")

// ErrDegraded is returned when the stored value is malformed.
var ErrDegraded = errors.New("metabase is degraded")
