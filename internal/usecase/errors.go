package usecase

import "errors"

var (
	// ErrMissingCredential indicates the request carried no credential at all.
	ErrMissingCredential = errors.New("missing credential")
	// ErrMalformedCredential indicates the credential could not be decoded
	// into an identifier and secret.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrUnknownPrincipal indicates no stored record matches the identifier.
	ErrUnknownPrincipal = errors.New("unknown principal")
	// ErrInvalidSecret indicates the secret did not match the stored hash.
	ErrInvalidSecret = errors.New("invalid secret")
	// ErrExpired indicates the credential record exists but aged past its TTL.
	ErrExpired = errors.New("credential expired")

	// ErrSlugTaken indicates a caller-chosen slug is already registered.
	ErrSlugTaken = errors.New("slug already taken")
	// ErrInvalidDestination indicates the destination url is missing or not
	// absolute.
	ErrInvalidDestination = errors.New("destination url must be absolute")
)

// IsAuthFailure reports whether err is one of the authentication outcomes
// that must collapse into a single uniform rejection at the transport edge.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrMalformedCredential) ||
		errors.Is(err, ErrUnknownPrincipal) ||
		errors.Is(err, ErrInvalidSecret) ||
		errors.Is(err, ErrExpired)
}
