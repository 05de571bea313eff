package domain

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindInvalidState
	KindInactiveAccount
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindInvalidState:
		return "invalid_state"
	case KindInactiveAccount:
		return "inactive_account"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Error is the single error type the services return.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) error      { return &Error{Kind: KindBadRequest, Msg: msg} }
func InvalidState(msg string) error    { return &Error{Kind: KindInvalidState, Msg: msg} }
func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf returns KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ErrDuplicate is returned by repositories when a unique index rejects a write.
var ErrDuplicate = errors.New("duplicate key")

var (
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Msg: "incorrect email or password"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Msg: "could not validate credentials"}
	ErrInactiveAccount    = &Error{Kind: KindInactiveAccount, Msg: "inactive user"}
	ErrForbidden          = &Error{Kind: KindForbidden, Msg: "not authorized"}

	ErrUserNotFound    = &Error{Kind: KindNotFound, Msg: "user not found"}
	ErrEmailRegistered = &Error{Kind: KindConflict, Msg: "email already registered"}

	ErrBootstrapEmailTaken = &Error{Kind: KindConflict, Msg: "bootstrap email belongs to a non-admin account"}

	ErrProjectNotFound = &Error{Kind: KindNotFound, Msg: "project not found"}
	ErrProjectNotOpen  = &Error{Kind: KindBadRequest, Msg: "project is not open"}

	ErrApplicationNotFound  = &Error{Kind: KindNotFound, Msg: "application not found"}
	ErrDuplicateApplication = &Error{Kind: KindConflict, Msg: "you have already applied to this project"}
	ErrNoStatusProvided     = &Error{Kind: KindBadRequest, Msg: "no status provided for update"}
	ErrInvalidTransition    = &Error{Kind: KindInvalidState, Msg: "application status can no longer change"}

	ErrReviewNotFound      = &Error{Kind: KindNotFound, Msg: "review not found"}
	ErrApplicationNotReady = &Error{Kind: KindInvalidState, Msg: "cannot review unaccepted application"}
	ErrReviewExists        = &Error{Kind: KindConflict, Msg: "review already exists"}
	ErrInvalidRating       = &Error{Kind: KindBadRequest, Msg: "rating must be between 1 and 5"}

	ErrSelfReview        = &Error{Kind: KindBadRequest, Msg: "cannot review yourself"}
	ErrSameRoleReview    = &Error{Kind: KindBadRequest, Msg: "cannot review users with your own role"}
	ErrUserReviewExists  = &Error{Kind: KindBadRequest, Msg: "you have already reviewed this user"}
	ErrUserReviewMissing = &Error{Kind: KindNotFound, Msg: "you have not reviewed this user yet"}
)
