// Package simerr classifies simulation failures by kind rather than by Go
// type, matching the five-way taxonomy the engine was designed around:
// a caller switches on Kind(), never on a concrete error struct.
package simerr

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Kind is one of the five recognized simulation failure categories.
type Kind string

const (
	// DomainRefusal is a legal-but-declined operation: state is unchanged,
	// a message is appended for the caller. Not fatal.
	DomainRefusal Kind = "DOMAIN_REFUSAL"
	// BoundsViolation is an out-of-grid cell reference. Not fatal, silently
	// ignored by callers beyond surfacing a message.
	BoundsViolation Kind = "BOUNDS_VIOLATION"
	// PoolDepleted means a water-pool draw returned less than requested.
	// Not an error condition by itself - callers must use the returned
	// amount - but the kind exists so partial-fill paths can be logged.
	PoolDepleted Kind = "POOL_DEPLETED"
	// CacheStale flags a connectivity-cache read attempted before a
	// required rebuild. Recovered by the caller triggering EnsureValid.
	CacheStale Kind = "CACHE_STALE"
	// InvariantBreach means a core conservation or bounds invariant did
	// not hold after a tick phase. Fatal when debug.Is(debug.Logic) is
	// set, clamped and logged otherwise.
	InvariantBreach Kind = "INVARIANT_BREACH"
)

// SimError is a simulation-domain error carrying an HTTP status for the
// command API and a machine-readable kind for internal dispatch.
type SimError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Err        error
}

func (e *SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SimError) Unwrap() error { return e.Err }

// Predeclared templates, one per kind, for the common case of no extra
// context.
var (
	ErrBoundsViolation = &SimError{Kind: BoundsViolation, Message: "cell is outside the grid", HTTPStatus: http.StatusBadRequest}
	ErrPoolDepleted    = &SimError{Kind: PoolDepleted, Message: "water pool has insufficient volume", HTTPStatus: http.StatusConflict}
	ErrCacheStale      = &SimError{Kind: CacheStale, Message: "connectivity cache requires a rebuild", HTTPStatus: http.StatusInternalServerError}
	ErrInvariantBreach = &SimError{Kind: InvariantBreach, Message: "simulation invariant violated", HTTPStatus: http.StatusInternalServerError}
)

// NewRefusal builds a DomainRefusal with a formatted message - the common
// path for terrain operations that decline without mutating state.
func NewRefusal(format string, args ...any) *SimError {
	return &SimError{
		Kind:       DomainRefusal,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInvariantBreach wraps an invariant check failure with context about
// which invariant and where.
func NewInvariantBreach(format string, args ...any) *SimError {
	return &SimError{
		Kind:       InvariantBreach,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Wrap attaches an underlying error to a template without mutating it.
func Wrap(base *SimError, message string, err error) *SimError {
	return &SimError{
		Kind:       base.Kind,
		Message:    message,
		HTTPStatus: base.HTTPStatus,
		Err:        err,
	}
}

// Is reports whether err is a SimError of the given kind.
func Is(err error, kind Kind) bool {
	var se *SimError
	if !stdErrors.As(err, &se) {
		return false
	}
	return se.Kind == kind
}

// ErrorResponse is the JSON shape returned by the command API on failure.
type ErrorResponse struct {
	Error struct {
		Kind    Kind   `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// RespondWithError writes a SimError (or any error, folded into an
// internal-breach response) to an HTTP response.
func RespondWithError(w http.ResponseWriter, err error) {
	var se *SimError
	if !stdErrors.As(err, &se) {
		se = &SimError{Kind: InvariantBreach, Message: "an unexpected error occurred", HTTPStatus: http.StatusInternalServerError, Err: err}
	}

	resp := ErrorResponse{}
	resp.Error.Kind = se.Kind
	resp.Error.Message = se.Message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(se.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
