package handlers_test

import (
	"context"
	"errors"
	"sync"

	"github.com/serroba/paylink/internal/redemption"
	"github.com/serroba/paylink/internal/shortener"
	"github.com/serroba/paylink/internal/token"
)

var errMock = errors.New("mock error")

// mockIssuer returns a fixed ticket or error.
type mockIssuer struct {
	ticket *token.Ticket
	err    error
}

func (m *mockIssuer) Issue(_ context.Context, _ shortener.Code, _, _ string) (*token.Ticket, error) {
	return m.ticket, m.err
}

// mockRedeemer records the last request and returns a fixed result or error.
type mockRedeemer struct {
	last   redemption.Request
	result *redemption.Result
	err    error
}

func (m *mockRedeemer) Redeem(_ context.Context, req redemption.Request) (*redemption.Result, error) {
	m.last = req

	return m.result, m.err
}

// recordingEvents captures link-created notifications.
type recordingEvents struct {
	mu      sync.Mutex
	created []createdEvent
}

type createdEvent struct {
	code      shortener.Code
	clientIP  string
	userAgent string
}

func (r *recordingEvents) LinkCreated(_ context.Context, link *shortener.Link, clientIP, userAgent string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.created = append(r.created, createdEvent{code: link.Code, clientIP: clientIP, userAgent: userAgent})
}

func (r *recordingEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.created)
}

// failingLinks fails every operation with err.
type failingLinks struct {
	err error
}

func (f *failingLinks) Create(context.Context, shortener.CreateInput) (*shortener.Link, error) {
	return nil, f.err
}

func (f *failingLinks) AliasExists(context.Context, string) (bool, error) {
	return false, f.err
}

func (f *failingLinks) Update(context.Context, shortener.Code, int64, shortener.UpdateInput) (*shortener.Link, error) {
	return nil, f.err
}

func (f *failingLinks) Moderate(context.Context, shortener.Code, shortener.ModerateInput) (*shortener.Link, error) {
	return nil, f.err
}

func (f *failingLinks) Stats(context.Context, shortener.Code, int64) (*shortener.Stats, error) {
	return nil, f.err
}
