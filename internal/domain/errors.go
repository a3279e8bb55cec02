package domain

import "errors"

// Sentinel errors shared across the service layers. Handlers map these
// onto HTTP statuses; everything else is treated as an internal error.
var (
	// ErrDuplicateUsername is returned when registering a username
	// that already exists.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials is returned for any failed login. Missing
	// users and wrong passwords are deliberately indistinguishable to
	// avoid username enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable indicates the persistence layer could not be
	// reached. Fatal to the current operation; no automatic retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrExternalService indicates the completion API call failed,
	// timed out, or returned a malformed response.
	ErrExternalService = errors.New("completion service error")

	// ErrConfiguration indicates missing or invalid configuration,
	// e.g. an absent API credential. Surfaced before any call is made.
	ErrConfiguration = errors.New("configuration error")
)
