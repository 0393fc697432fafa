package demokit

import (
	"errors"
	"fmt"
)

// Sentinel errors for option construction and registration.
var (
	// ErrEmptyKey indicates an option was constructed with an empty key.
	ErrEmptyKey = errors.New("option key must not be empty")

	// ErrNilCallback indicates an option was constructed without a callback.
	ErrNilCallback = errors.New("option callback must not be nil")

	// ErrInvalidSite indicates a malformed site identifier.
	ErrInvalidSite = errors.New("invalid site identifier")

	// ErrDuplicateKey indicates a key collision within one site's option set.
	ErrDuplicateKey = errors.New("duplicate option key")

	// ErrSiteLocked indicates a registration targeted a locked site.
	ErrSiteLocked = errors.New("site is locked")
)

// Sentinel errors for lookup and dispatch.
var (
	// ErrUnknownOption indicates no option matched and no wildcard is configured.
	ErrUnknownOption = errors.New("unknown option")

	// ErrNoOptions indicates a site has no configured option set.
	ErrNoOptions = errors.New("no options configured for site")

	// ErrNoInput indicates a site has no designated input function.
	ErrNoInput = errors.New("no input function designated for site")
)

// Sentinel errors for the run loop.
var (
	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrNoSites indicates Run() was called on a demo with no site sequence.
	ErrNoSites = errors.New("demo has no site sequence")

	// ErrMaxRetries indicates a single site re-prompted beyond the configured limit.
	ErrMaxRetries = errors.New("exceeded maximum retries")
)

// ValidationError reports malformed construction input: an empty key, a nil
// callback, or a bad site identifier. It is raised synchronously at
// registration time, never deferred.
type ValidationError struct {
	// Field is the construction input that failed ("key", "callback", "site").
	Field string
	// Value is the offending value, when printable.
	Value string
	// Err is the underlying sentinel.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is support.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DuplicateKeyError reports a key collision within one site's option set,
// including a disallowed silent override on an inherited copy. Callers
// resolve by renaming or passing WithOverwrite().
type DuplicateKeyError struct {
	// Site is the input-function identifier whose set already holds Key.
	Site string
	// Key is the colliding option key.
	Key string
}

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("site %s: key %q already registered", e.Site, e.Key)
}

// Unwrap returns ErrDuplicateKey for errors.Is support.
func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// RegistrationError reports an attempted registration into a locked site.
// Once a lock-flagged option joins a set, that set accepts no further keys.
type RegistrationError struct {
	// Site is the locked input-function identifier.
	Site string
	// Key is the key that was being registered.
	Key string
	// LockKey is the key of the option holding the lock.
	LockKey string
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return fmt.Sprintf("site %s: cannot register %q: locked by option %q", e.Site, e.Key, e.LockKey)
}

// Unwrap returns ErrSiteLocked for errors.Is support.
func (e *RegistrationError) Unwrap() error {
	return ErrSiteLocked
}

// UnknownOptionError reports a response or key with no match and no wildcard
// fallback. The run loop decides whether to re-prompt or propagate.
type UnknownOptionError struct {
	// Site is the input-function identifier that was dispatched.
	Site string
	// Response is the raw response (or lookup key) that matched nothing.
	Response string
	// Err is ErrUnknownOption, or ErrNoOptions when the site is unconfigured.
	Err error
}

// Error implements the error interface.
func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("site %s: response %q: %v", e.Site, e.Response, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is support.
func (e *UnknownOptionError) Unwrap() error {
	return e.Err
}

// DispatchError wraps a callback error with dispatch context. The registry
// itself never wraps callback errors; the run loop adds this envelope so
// callers can tell which site and option failed.
type DispatchError struct {
	// Site is the input-function identifier being dispatched.
	Site string
	// Key is the key of the option whose callback failed.
	Key string
	// Err is the callback's error, unchanged.
	Err error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("site %s: option %q: %v", e.Site, e.Key, e.Err)
}

// Unwrap returns the callback error for errors.Is/As support.
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// MaxRetriesError provides context when a site re-prompts beyond the limit.
type MaxRetriesError struct {
	// Site is the input-function identifier that kept re-prompting.
	Site string
	// Max is the configured retry limit.
	Max int
}

// Error implements the error interface.
func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("site %s: exceeded maximum retries (%d)", e.Site, e.Max)
}

// Unwrap returns ErrMaxRetries for errors.Is support.
func (e *MaxRetriesError) Unwrap() error {
	return ErrMaxRetries
}
