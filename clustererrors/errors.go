// Package clustererrors provides the typed fatal-error kinds the grouping
// engine can raise, modeled on common/scooterrors' exit-code-carrying error
// wrapper but generalized to carry a Kind instead of a process exit code.
package clustererrors

import "github.com/pkg/errors"

// Kind identifies which error-handling policy (see the error-handling
// bullet of SPEC_FULL.md's AMBIENT STACK section) applies to a ClusterError.
type Kind int

const (
	// InvalidArgument is raised by the estimator on a zero host count or an
	// empty search space. Fatal: programmer error.
	InvalidArgument Kind = iota

	// OracleUnavailable is raised when the wait-time oracle's underlying
	// batch-service call fails. Fatal, wrapped with context.
	OracleUnavailable

	// OracleInvalid is raised when the oracle returns a negative start-time
	// estimate. Fatal.
	OracleInvalid

	// MissingPlaceholder is raised on a pilot-start event with no PENDING
	// placeholder to match it against. Fatal.
	MissingPlaceholder

	// OrphanCompletion is raised on a standard-job completion with no
	// owning placeholder while not in individual mode. Fatal.
	OrphanCompletion
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case OracleUnavailable:
		return "OracleUnavailable"
	case OracleInvalid:
		return "OracleInvalid"
	case MissingPlaceholder:
		return "MissingPlaceholder"
	case OrphanCompletion:
		return "OrphanCompletion"
	default:
		return "Unknown"
	}
}

// ClusterError wraps an underlying error with the Kind that determines how
// the controller's caller should react to it. All Kinds here are fatal;
// AlreadyTerminated and StandardJobFailed are not modeled as ClusterError
// because the policy table swallows/logs them instead of propagating them.
type ClusterError struct {
	error
	Kind Kind
}

// New wraps err with the given Kind. Returns nil if err is nil, matching
// NewScootError's nil-propagation behavior.
func New(err error, kind Kind) *ClusterError {
	if err == nil {
		return nil
	}
	return &ClusterError{err, kind}
}

// Wrapf wraps err with additional context and the given Kind, preserving a
// stack trace via github.com/pkg/errors.
func Wrapf(err error, kind Kind, format string, args ...interface{}) *ClusterError {
	if err == nil {
		return nil
	}
	return &ClusterError{errors.Wrapf(err, format, args...), kind}
}

// GetKind returns the error's Kind, or -1 if ce is nil.
func (ce *ClusterError) GetKind() Kind {
	if ce == nil {
		return -1
	}
	return ce.Kind
}

// IsKind reports whether err is a *ClusterError of the given Kind.
func IsKind(err error, kind Kind) bool {
	ce, ok := err.(*ClusterError)
	return ok && ce.Kind == kind
}
