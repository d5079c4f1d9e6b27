/*
Package errs provides custom error types and application-level error code constants.

These codes identify specific business or system errors both internally and in
responses to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate exceeded the configured limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room and Message Errors
const (
	// ErrInvalidRoom indicates a malformed room identifier.
	ErrInvalidRoom = 2101

	// ErrEmptyMessage indicates message content that is empty or whitespace only.
	ErrEmptyMessage = 2201

	// ErrMessageContentTooLong indicates message content over the maximum length.
	ErrMessageContentTooLong = 2202
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrEmailAlreadyExists indicates registration with an already-registered email.
	ErrEmailAlreadyExists = 3101

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = 3102

	// ErrUnauthorized indicates an action attempted without a bound session.
	ErrUnauthorized = 3103

	// ErrUserNotFound indicates a lookup for an account that does not exist.
	ErrUserNotFound = 3104

	// ErrInvalidEmail indicates a malformed email address at registration.
	ErrInvalidEmail = 3105

	// ErrInvalidPassword indicates a password outside the allowed length range.
	ErrInvalidPassword = 3106

	// ErrInvalidName indicates an empty or oversized display name.
	ErrInvalidName = 3107

	// ErrInvalidAvatarType indicates an avatar upload with a disallowed file type.
	ErrInvalidAvatarType = 3108
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server internal error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates a persistence-layer failure. The action
	// fails without retry; nothing is buffered.
	ErrStoreUnavailable = 5001

	// ErrFileStorageFailed indicates an avatar storage failure.
	ErrFileStorageFailed = 5002
)
