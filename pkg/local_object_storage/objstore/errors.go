package objstore

import (
	"errors"
)

var (
	// ErrNoSpace is returned when an object does not fit into the store capacity.
	ErrNoSpace = errors.New("no free space")

	// ErrFreed is returned on access to the object which has been freed.
	ErrFreed = errors.New("object is freed")

	// ErrInvalidAddress is returned for addresses which were never allocated.
	ErrInvalidAddress = errors.New("invalid object address")

	// ErrDecode is returned when stored bytes can not be decoded.
	ErrDecode = errors.New("decode error")

	// ErrSizeMismatch is returned when a modified object does not fit
	// into the space allocated for it.
	ErrSizeMismatch = errors.New("object does not fit allocated space")

	// ErrCorrupted is returned when store metadata is broken.
	ErrCorrupted = errors.New("store is corrupted")
)
