// Package deletion runs the request/approve/reject workflow for removing ledger transactions.
package deletion

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"storeroom/pkg/ledger"
)

var (
	ErrNotFound       = errors.New("deletion request not found")
	ErrNotPending     = errors.New("deletion request is no longer pending")
	ErrAlreadyPending = errors.New("a deletion request for this transaction is already pending")
	ErrForbidden      = errors.New("only admins can review deletion requests")
	ErrReasonRequired = errors.New("a reason is required")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request proposes removing one transaction; Transaction is a copy taken when it was filed.
type Request struct {
	ID          string             `json:"id"`
	Transaction ledger.Transaction `json:"transaction"`
	Reason      string             `json:"reason"`
	RequestedBy string             `json:"requestedBy"`
	Status      Status             `json:"status"`
	ReviewedBy  string             `json:"reviewedBy,omitempty"`
	ReviewNote  string             `json:"reviewNote,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	ReviewedAt  *time.Time         `json:"reviewedAt,omitempty"`
}

// Reviewer is the caller reviewing a request.
type Reviewer struct {
	Email string
	Admin bool
}

// Ledger is the part of ledger.Service the workflow needs.
type Ledger interface {
	Get(ctx context.Context, id string) (ledger.Transaction, error)
	Remove(ctx context.Context, id string) (ledger.Transaction, error)
}

const queueTimeout = 2 * time.Second

type command struct {
	ctx    context.Context
	action string
	id     string
	txID   string
	reason string
	actor  Reviewer
	reply  chan commandResult
}

type commandResult struct {
	request Request
	err     error
}

type listQuery struct {
	status Status
	reply  chan []Request
}

// Service keeps the requests in one goroutine, like the ledger it reviews.
type Service struct {
	ledger   Ledger
	now      func() time.Time
	requests []Request
	commands chan command
	lists    chan listQuery
	quit     chan struct{}
}

func NewService(l Ledger) *Service {
	svc := &Service{
		ledger:   l,
		now:      time.Now,
		commands: make(chan command),
		lists:    make(chan listQuery),
		quit:     make(chan struct{}),
	}
	go svc.loop()
	return svc
}

func (s *Service) loop() {
	for {
		select {
		case cmd := <-s.commands:
			req, err := s.apply(cmd)
			cmd.reply <- commandResult{request: req, err: err}
		case q := <-s.lists:
			out := make([]Request, 0, len(s.requests))
			for i := len(s.requests) - 1; i >= 0; i-- {
				if q.status == "" || s.requests[i].Status == q.status {
					out = append(out, s.requests[i])
				}
			}
			q.reply <- out
		case <-s.quit:
			return
		}
	}
}

func (s *Service) apply(cmd command) (Request, error) {
	switch cmd.action {
	case "request":
		return s.file(cmd)
	case "approve", "reject":
		return s.review(cmd)
	default:
		return Request{}, fmt.Errorf("unknown deletion action %s", cmd.action)
	}
}

func (s *Service) file(cmd command) (Request, error) {
	reason := strings.TrimSpace(cmd.reason)
	if reason == "" {
		return Request{}, ErrReasonRequired
	}
	pending := slices.ContainsFunc(s.requests, func(r Request) bool {
		return r.Transaction.ID == cmd.txID && r.Status == StatusPending
	})
	if pending {
		return Request{}, ErrAlreadyPending
	}
	tx, err := s.ledger.Get(cmd.ctx, cmd.txID)
	if err != nil {
		return Request{}, err
	}
	req := Request{
		ID:          uuid.NewString(),
		Transaction: tx,
		Reason:      reason,
		RequestedBy: cmd.actor.Email,
		Status:      StatusPending,
		CreatedAt:   s.now(),
	}
	s.requests = append(s.requests, req)
	return req, nil
}

func (s *Service) review(cmd command) (Request, error) {
	idx := slices.IndexFunc(s.requests, func(r Request) bool { return r.ID == cmd.id })
	if idx < 0 {
		return Request{}, ErrNotFound
	}
	if !cmd.actor.Admin {
		return Request{}, ErrForbidden
	}
	req := s.requests[idx]
	if req.Status != StatusPending {
		return Request{}, ErrNotPending
	}

	if cmd.action == "approve" {
		if _, err := s.ledger.Remove(cmd.ctx, req.Transaction.ID); err != nil {
			return Request{}, err
		}
		req.Status = StatusApproved
	} else {
		req.Status = StatusRejected
	}
	reviewedAt := s.now()
	req.ReviewedBy = cmd.actor.Email
	req.ReviewNote = strings.TrimSpace(cmd.reason)
	req.ReviewedAt = &reviewedAt
	s.requests[idx] = req
	return req, nil
}

func (s *Service) dispatch(ctx context.Context, cmd command) (Request, error) {
	cmd.ctx = ctx
	cmd.reply = make(chan commandResult, 1)

	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return Request{}, ctx.Err()
	case <-time.After(queueTimeout):
		return Request{}, errors.New("deletion queue is busy")
	}

	select {
	case res := <-cmd.reply:
		return res.request, res.err
	case <-ctx.Done():
		return Request{}, ctx.Err()
	case <-time.After(queueTimeout):
		return Request{}, errors.New("deletion " + cmd.action + " timed out")
	}
}

// Request files a pending deletion request for a transaction.
func (s *Service) Request(ctx context.Context, txID, reason string, requester Reviewer) (Request, error) {
	return s.dispatch(ctx, command{action: "request", txID: txID, reason: reason, actor: requester})
}

// Approve removes the transaction from the ledger and closes the request.
func (s *Service) Approve(ctx context.Context, id string, reviewer Reviewer) (Request, error) {
	return s.dispatch(ctx, command{action: "approve", id: id, actor: reviewer})
}

// Reject closes the request and keeps the transaction.
func (s *Service) Reject(ctx context.Context, id string, reviewer Reviewer, note string) (Request, error) {
	return s.dispatch(ctx, command{action: "reject", id: id, reason: note, actor: reviewer})
}

// List returns requests newest first; an empty status matches all.
func (s *Service) List(ctx context.Context, status Status) ([]Request, error) {
	q := listQuery{status: status, reply: make(chan []Request, 1)}

	select {
	case s.lists <- q:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(queueTimeout):
		return nil, errors.New("deletion queue is busy")
	}

	select {
	case out := <-q.reply:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(queueTimeout):
		return nil, errors.New("deletion list timed out")
	}
}

// ParseStatus accepts "", "pending", "approved" or "rejected".
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "", StatusPending, StatusApproved, StatusRejected:
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Close stops the goroutine to allow graceful shutdown.
func (s *Service) Close() {
	close(s.quit)
}
