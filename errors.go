package mailtm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mailtm/client-go/internal/api"
)

// Sentinel errors for errors.Is() checks. Each matches every *Error of the
// corresponding Kind.
var (
	// ErrUnauthorized is returned when the bearer token is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCannotCreateAccount is returned when account creation fails.
	ErrCannotCreateAccount = errors.New("cannot create account")

	// ErrCannotGetAccountInfo is returned when an account cannot be fetched.
	ErrCannotGetAccountInfo = errors.New("cannot get account info")

	// ErrCannotGetToken is returned when credentials cannot be exchanged for a token.
	ErrCannotGetToken = errors.New("cannot get token")

	// ErrCannotGetDomain is returned when domains cannot be listed or fetched.
	ErrCannotGetDomain = errors.New("cannot get domain")

	// ErrCannotGetMessage is returned when messages cannot be listed or fetched.
	ErrCannotGetMessage = errors.New("cannot get message")

	// ErrCannotDeleteMessage is returned when a message cannot be deleted.
	ErrCannotDeleteMessage = errors.New("cannot delete message")

	// ErrCannotMarkMessageAsRead is returned when a message cannot be marked as read.
	ErrCannotMarkMessageAsRead = errors.New("cannot mark message as read")

	// ErrCannotGetSource is returned when a message source cannot be fetched.
	ErrCannotGetSource = errors.New("cannot get source")
)

// ErrorKind tags an *Error with the failure it represents.
type ErrorKind int

// Error kinds.
const (
	KindUnauthorized ErrorKind = iota + 1
	KindCannotCreateAccount
	KindCannotGetAccountInfo
	KindCannotGetToken
	KindCannotGetDomain
	KindCannotGetMessage
	KindCannotDeleteMessage
	KindCannotMarkMessageAsRead
	KindCannotGetSource
)

var kindSentinels = map[ErrorKind]error{
	KindUnauthorized:            ErrUnauthorized,
	KindCannotCreateAccount:     ErrCannotCreateAccount,
	KindCannotGetAccountInfo:    ErrCannotGetAccountInfo,
	KindCannotGetToken:          ErrCannotGetToken,
	KindCannotGetDomain:         ErrCannotGetDomain,
	KindCannotGetMessage:        ErrCannotGetMessage,
	KindCannotDeleteMessage:     ErrCannotDeleteMessage,
	KindCannotMarkMessageAsRead: ErrCannotMarkMessageAsRead,
	KindCannotGetSource:         ErrCannotGetSource,
}

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindCannotCreateAccount:
		return "CannotCreateAccount"
	case KindCannotGetAccountInfo:
		return "CannotGetAccountInfo"
	case KindCannotGetToken:
		return "CannotGetToken"
	case KindCannotGetDomain:
		return "CannotGetDomain"
	case KindCannotGetMessage:
		return "CannotGetMessage"
	case KindCannotDeleteMessage:
		return "CannotDeleteMessage"
	case KindCannotMarkMessageAsRead:
		return "CannotMarkMessageAsRead"
	case KindCannotGetSource:
		return "CannotGetSource"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned when the API answers with a status outside the success set.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	// Body is the raw response body.
	Body string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mailtm: %s (status %d)", e.Message, e.StatusCode)
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// NetworkError represents a transport-level failure. It is never an *Error.
type NetworkError struct {
	Err error
	URL string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError indicates a successful response whose body could not be
// decoded into the expected record.
type DecodeError struct {
	Resource string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Resource, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// operation describes how one endpoint's failures are reported.
type operation struct {
	kind    ErrorKind
	message string
	// unauthorized maps 401 to KindUnauthorized instead of kind.
	unauthorized bool
}

var (
	opCreateAccount     = operation{KindCannotCreateAccount, "Cannot create account", false}
	opGetAccount        = operation{KindCannotGetAccountInfo, "Cannot get account info", true}
	opGetCurrentAccount = operation{KindCannotGetAccountInfo, "Cannot get account info", false}
	opGetToken          = operation{KindCannotGetToken, "Cannot get token", false}
	opListDomains       = operation{KindCannotGetDomain, "Cannot get domain info", false}
	opGetDomain         = operation{KindCannotGetDomain, "Cannot get domain info", true}
	opGetMessage        = operation{KindCannotGetMessage, "Cannot get message", true}
	opDeleteMessage     = operation{KindCannotDeleteMessage, "Cannot delete the message", true}
	opMarkMessageRead   = operation{KindCannotMarkMessageAsRead, "Cannot mark as read", true}
	opGetSource         = operation{KindCannotGetSource, "Cannot get the source", true}
)

// check returns nil for a successful response, otherwise the *Error the
// operation reports for it.
func (op operation) check(resp *api.Response) error {
	if resp.Success() {
		return nil
	}
	if op.unauthorized && resp.StatusCode == http.StatusUnauthorized {
		return &Error{
			Kind:       KindUnauthorized,
			Message:    "Invalid token",
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}
	return &Error{
		Kind:       op.kind,
		Message:    op.message,
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}
}

// wrapError converts internal API errors to public errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return &NetworkError{
			Err: netErr.Err,
			URL: netErr.URL,
		}
	}

	return err
}
