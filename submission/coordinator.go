// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submission

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campusvote/ballotbooth/ballot"
	"github.com/campusvote/ballotbooth/ledger"
	"github.com/campusvote/ballotbooth/models"
)

// Submission lifecycle states
const (
	StateIdle           = "idle"
	StateConfirming     = "confirming"
	StateSubmitting     = "submitting"
	StateAwaitingLedger = "awaiting-ledger"
	StateAccepted       = "accepted"
	StateRejected       = "rejected"
)

// Rejection reason codes
const (
	ReasonTimeout          = "timeout"
	ReasonWindowClosed     = "window-closed"
	ReasonDuplicateVote    = "duplicate-vote"
	ReasonIdentityRejected = "identity-rejected"
	ReasonTransportError   = "transport-error"
)

var (
	ErrIncompleteBallot   = errors.New("ballot is not complete")
	ErrNotConfirming      = errors.New("no confirmation is pending")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrAlreadyDecided     = errors.New("submission already reached a terminal state")
)

// Caster is the single external operation the coordinator performs.
// *ledger.Client satisfies it.
type Caster interface {
	CastVote(ctx context.Context, args ledger.CastVoteArgs) (*ledger.CastVoteReply, error)
}

// Options configure one submission attempt.
type Options struct {
	ElectionID    string
	VoterIdentity string
	Timeout       time.Duration
}

// Result is the outcome of a confirmed submission.
type Result struct {
	State     string
	Reason    string
	ReceiptID string
	LedgerRef string
}

// Status is the coordinator's externally visible state, for rendering.
type Status struct {
	State     string
	Reason    string
	ReceiptID string
	LedgerRef string
}

// Coordinator drives one submission attempt through
// idle -> confirming -> submitting -> awaiting-ledger -> accepted | rejected.
//
// It owns the only path that may call the cast-vote interface, and it calls
// it at most once. Two HTTP requests can hit Confirm concurrently, so state
// transitions are guarded by a mutex; the ledger call itself happens outside
// the lock.
//
// RequestConfirm freezes the draft and snapshots its selections; Confirm
// submits that snapshot, never re-reading the draft. A selection that
// slips in after the voter saw the summary is therefore impossible - the
// frozen draft refuses it.
//
// Accepted and rejected are terminal. Retrying a rejected submission means
// building a new Coordinator over the same (still intact) draft.
type Coordinator struct {
	mu         sync.Mutex
	draft      *ballot.Draft
	caster     Caster
	opts       Options
	state      string
	reason     string
	receipt    string
	ledger     string
	summary    []models.SummaryEntry
	selections map[string]string
}

// New creates an idle coordinator for the given draft.
func New(draft *ballot.Draft, caster Caster, opts Options) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Coordinator{
		draft:  draft,
		caster: caster,
		opts:   opts,
		state:  StateIdle,
	}
}

// RequestConfirm moves idle -> confirming, gated on ballot completeness.
// It freezes the draft and captures the summary and selections as one
// consistent snapshot; the voter acknowledges exactly what is in it, and
// Confirm submits exactly that. Calling again while already confirming
// just returns the same snapshot.
func (c *Coordinator) RequestConfirm() ([]models.SummaryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
		// fall through to the completeness gate
	case StateConfirming:
		return c.summary, nil
	case StateSubmitting, StateAwaitingLedger:
		return nil, ErrSubmissionInFlight
	default:
		return nil, ErrAlreadyDecided
	}

	// Freeze before reading so the summary and the selections snapshot
	// are one consistent view; no edit can land between them.
	c.draft.Freeze()
	if !c.draft.IsComplete() {
		c.draft.Unfreeze()
		return nil, ErrIncompleteBallot
	}

	c.summary = c.draft.Summary()
	c.selections = c.draft.Selections()
	c.state = StateConfirming
	return c.summary, nil
}

// Cancel abandons a pending confirmation, unfreezes the draft, and returns
// to idle. This is the voter's last exit before the irreversible part.
func (c *Coordinator) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateConfirming:
		c.state = StateIdle
		c.summary = nil
		c.selections = nil
		c.draft.Unfreeze()
		return nil
	case StateIdle:
		return nil
	case StateSubmitting, StateAwaitingLedger:
		return ErrSubmissionInFlight
	default:
		return ErrAlreadyDecided
	}
}

// Confirm performs the irreversible hand-off: confirming -> submitting,
// fires the single cast-vote call with a bounded timeout, and lands in
// accepted or rejected. It submits the selections snapshot taken at
// RequestConfirm and never touches the draft while the call is in flight.
//
// A second Confirm while the first is in flight gets ErrSubmissionInFlight
// and causes no second ledger call.
func (c *Coordinator) Confirm(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	switch c.state {
	case StateConfirming:
		// proceed
	case StateIdle:
		c.mu.Unlock()
		return nil, ErrNotConfirming
	case StateSubmitting, StateAwaitingLedger:
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	default:
		c.mu.Unlock()
		return nil, ErrAlreadyDecided
	}
	c.state = StateSubmitting
	args := ledger.CastVoteArgs{
		ElectionID:    c.opts.ElectionID,
		Selections:    c.selections,
		VoterIdentity: c.opts.VoterIdentity,
	}
	c.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	reply, err := c.caster.CastVote(cctx, args)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = StateRejected
		c.reason = reasonFor(cctx, err)
		// The draft survives a rejection so the voter can retry
		c.draft.Unfreeze()
		return &Result{State: c.state, Reason: c.reason}, nil
	}

	// The ledger reference in the reply is itself proof of acceptance;
	// the later verification poll never gates this transition.
	c.state = StateAwaitingLedger
	c.receipt = reply.ReceiptID
	c.ledger = reply.LedgerRef
	c.state = StateAccepted

	return &Result{State: c.state, ReceiptID: c.receipt, LedgerRef: c.ledger}, nil
}

// Status reports the current state for rendering.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:     c.state,
		Reason:    c.reason,
		ReceiptID: c.receipt,
		LedgerRef: c.ledger,
	}
}

// Retryable reports whether a rejected submission may be retried by
// re-entering confirmation. Window-closed and duplicate-vote rejections
// are final; timeouts and transport errors are not.
func Retryable(reason string) bool {
	switch reason {
	case ReasonTimeout, ReasonTransportError:
		return true
	default:
		return false
	}
}

// reasonFor maps a cast-vote failure to a rejection reason code.
func reasonFor(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded:
		return ReasonTimeout
	case errors.Is(err, ledger.ErrWindowClosed):
		return ReasonWindowClosed
	case errors.Is(err, ledger.ErrDuplicateVote):
		return ReasonDuplicateVote
	case errors.Is(err, ledger.ErrIdentityRejected):
		return ReasonIdentityRejected
	default:
		return ReasonTransportError
	}
}
