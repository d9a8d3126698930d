package revocation

import "errors"

// ErrUnavailable wraps any failure of the revocation backing.
var ErrUnavailable = errors.New("revocation store unavailable")
