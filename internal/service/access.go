package service

import "github.com/inkwell-dev/inkwell/internal/domain"

// Decision is the outcome of the access check for one download attempt.
type Decision int

const (
	// DecisionNotFound: no registry row, or the binary is gone from disk.
	DecisionNotFound Decision = iota
	// DecisionAllowed: stream the file and bump the counter.
	DecisionAllowed
	// DecisionRequestRequired: the caller must create a download request
	// first. Also the outcome after a rejection, which does not block
	// re-requesting.
	DecisionRequestRequired
	// DecisionPendingExists: a pending request already exists; do not create
	// a duplicate.
	DecisionPendingExists
)

func (d Decision) String() string {
	switch d {
	case DecisionAllowed:
		return "allowed"
	case DecisionRequestRequired:
		return "request_required"
	case DecisionPendingExists:
		return "pending_exists"
	default:
		return "not_found"
	}
}

// Decide computes whether a download proceeds. Pure: callers fetch the
// registry row, the binary existence and the ledger state, and own any side
// effects (counter increment, request creation). Evaluated in order, first
// match wins:
//
//  1. no registry row        -> NotFound
//  2. binary missing on disk -> NotFound
//  3. admin                  -> Allowed, bypassing all gating
//  4. approved record exists -> Allowed
//  5. pending record exists  -> PendingExists
//  6. otherwise              -> RequestRequired
func Decide(requester *domain.User, fileExists, binaryExists bool, ledger domain.LedgerState) Decision {
	if !fileExists {
		return DecisionNotFound
	}
	if !binaryExists {
		return DecisionNotFound
	}
	if requester != nil && requester.Admin {
		return DecisionAllowed
	}
	if ledger.HasApproved {
		return DecisionAllowed
	}
	if ledger.HasPending {
		return DecisionPendingExists
	}
	return DecisionRequestRequired
}
