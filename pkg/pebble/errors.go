package pebble

import (
	"github.com/vango-dev/pebble/internal/errors"
)

// Sentinel errors. Every error pebble returns or panics with matches one of
// these under errors.Is, whatever cell it names.
var (
	ErrMissingOwner         = errors.New("P001")
	ErrMissingBoundary      = errors.New("P002")
	ErrUnknownKind          = errors.New("P003")
	ErrReadOnly             = errors.New("P004")
	ErrInvalidAction        = errors.New("P005")
	ErrCircularConstruction = errors.New("P010")
	ErrOptionType           = errors.New("P011")
	ErrIdentityConflict     = errors.New("P012")
)

// catch converts a contract-violation panic into an error.
// Any other panic is re-raised.
func catch(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if pe, ok := r.(*errors.PebbleError); ok {
		*err = pe
		return
	}
	panic(r)
}
