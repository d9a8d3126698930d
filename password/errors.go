package password

import "errors"

var (
	// ErrUnsupportedHash is returned for encodings with an unknown prefix.
	ErrUnsupportedHash = errors.New("unsupported password hash format")
	// ErrInvalidHash is returned when a recognised encoding cannot be parsed.
	ErrInvalidHash = errors.New("invalid password hash")
	// ErrEmptyPassword is returned by Hash for an empty plaintext.
	ErrEmptyPassword = errors.New("empty password")
)
