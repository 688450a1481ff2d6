// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrWindowClosed     = errors.New("voting window is closed")
	ErrDuplicateVote    = errors.New("a ballot was already recorded for this identity")
	ErrIdentityRejected = errors.New("voter identity was rejected")
	ErrReceiptNotFound  = errors.New("receipt not found on the ledger")
)

// Gateway error codes carried in the JSON error body
const (
	codeWindowClosed     = "window-closed"
	codeDuplicateVote    = "duplicate-vote"
	codeIdentityRejected = "identity-rejected"
	codeReceiptNotFound  = "receipt-not-found"
)

var defaultHTTPClient = &http.Client{
	Transport: &http.Transport{
		IdleConnTimeout: 60 * time.Second,
	},
}

// Client talks to the external ledger gateway. The gateway is the only
// authority on whether a ballot was accepted; this client never retries a
// cast on its own.
type Client struct {
	host string
	c    *http.Client
}

// New creates a client for the gateway at host (scheme://addr, no trailing
// slash required).
func New(host string) *Client {
	return &Client{
		host: strings.TrimRight(host, "/"),
		c:    defaultHTTPClient,
	}
}

type CastVoteArgs struct {
	ElectionID    string            `json:"election_id"`
	Selections    map[string]string `json:"selections"`
	VoterIdentity string            `json:"voter_identity"`
}

type CastVoteReply struct {
	ReceiptID string `json:"receipt_id"`
	LedgerRef string `json:"ledger_ref"`
}

type VerifyReply struct {
	Verified  bool   `json:"verified"`
	LedgerRef string `json:"ledger_ref"`
	BlockRef  string `json:"block_ref"`
}

// CastVote submits a completed ballot to the gateway. The caller must call
// this at most once per submission attempt; the coordinator enforces that.
// Gateway rejections map to the sentinel errors above, everything else
// (including a failed request) is returned as-is for the caller to treat as
// a transport error.
func (c *Client) CastVote(ctx context.Context, args CastVoteArgs) (*CastVoteReply, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cast-vote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/votes", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to build cast-vote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	r, err := c.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK && r.StatusCode != http.StatusCreated {
		return nil, replyError(r.Body, r.Status)
	}

	var reply CastVoteReply
	if err := json.NewDecoder(r.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("could not decode cast-vote reply: %w", err)
	}
	if reply.ReceiptID == "" || reply.LedgerRef == "" {
		return nil, fmt.Errorf("gateway accepted the vote but returned no receipt")
	}

	return &reply, nil
}

// VerifyReceipt asks the gateway whether the receipt is durably recorded.
// Safe to call repeatedly; the verification poller does exactly that.
func (c *Client) VerifyReceipt(ctx context.Context, receiptID string) (*VerifyReply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/votes/verify/"+receiptID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}

	r, err := c.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()

	if r.StatusCode == http.StatusNotFound {
		return nil, ErrReceiptNotFound
	}
	if r.StatusCode != http.StatusOK {
		return nil, replyError(r.Body, r.Status)
	}

	var reply VerifyReply
	if err := json.NewDecoder(r.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("could not decode verify reply: %w", err)
	}

	return &reply, nil
}

// replyError maps the error code embedded in a gateway error body to a
// sentinel error, falling back to the HTTP status line.
func replyError(body io.Reader, status string) error {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&e); err != nil || e.Error == "" {
		return fmt.Errorf("gateway error: %v", status)
	}

	switch e.Error {
	case codeWindowClosed:
		return ErrWindowClosed
	case codeDuplicateVote:
		return ErrDuplicateVote
	case codeIdentityRejected:
		return ErrIdentityRejected
	case codeReceiptNotFound:
		return ErrReceiptNotFound
	default:
		return fmt.Errorf("gateway error: %v: %v", status, e.Error)
	}
}
