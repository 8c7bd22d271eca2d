package cmderr

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Determinant/cordwood/pkg/local_object_storage/util/logicerr"
)

// Exit codes.
const (
	// CodeInternal is returned for storage and I/O failures.
	CodeInternal = 1

	// CodeLogical is returned when the request itself is invalid,
	// e.g. array index is out of bounds.
	CodeLogical = 2
)

// ExitErr specific error for ExitOnErr function that passes the exit code and error caused.
type ExitErr struct {
	Code  int
	Cause error
}

func (x ExitErr) Error() string { return x.Cause.Error() }

func (x ExitErr) Unwrap() error { return x.Cause }

// Code returns exit code for err: ExitErr code if err is one, CodeLogical for
// logical errors and CodeInternal otherwise. Returns 0 for nil err.
func Code(err error) int {
	if err == nil {
		return 0
	}

	var e ExitErr
	if errors.As(err, &e) {
		return e.Code
	}

	if logicerr.Is(err) {
		return CodeLogical
	}

	return CodeInternal
}

// ExitOnErr writes error to os.Stderr and calls os.Exit with code
// selected by Code. Does nothing if err is nil.
func ExitOnErr(err error) {
	if err != nil {
		Print(os.Stderr, err)
		os.Exit(Code(err))
	}
}

// Print writes err to w in the form ExitOnErr does.
func Print(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
}
