package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/serroba/paylink/internal/shortener"
)

// MemoryStore is an in-memory implementation of the link, view and
// balance stores.
type MemoryStore struct {
	mu       sync.RWMutex
	links    map[shortener.Code]*shortener.Link
	byID     map[int64]shortener.Code
	views    []shortener.View
	balances map[int64]shortener.Money
	nextLink int64
	nextView int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:    make(map[shortener.Code]*shortener.Link),
		byID:     make(map[int64]shortener.Code),
		balances: make(map[int64]shortener.Money),
	}
}

// AddUser registers a user with a zero balance.
func (m *MemoryStore) AddUser(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.balances[id]; !ok {
		m.balances[id] = 0
	}
}

// Balance returns the spendable balance of a user.
func (m *MemoryStore) Balance(_ context.Context, userID int64) (shortener.Money, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	balance, ok := m.balances[userID]
	if !ok {
		return 0, fmt.Errorf("user %d: %w", userID, shortener.ErrNotFound)
	}

	return balance, nil
}

func (m *MemoryStore) Create(_ context.Context, link *shortener.Link) error {
	if link.IsGuest() && link.EarnPerClick != 0 {
		return fmt.Errorf("create link %s: %w", link.Code, shortener.ErrGuestEarnings)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return shortener.ErrCodeCollision
	}

	m.nextLink++
	link.ID = m.nextLink

	stored := *link
	m.links[link.Code] = &stored
	m.byID[link.ID] = link.Code

	// An owned link implies its owner has a balance, as the users foreign
	// key does in Postgres.
	if link.OwnerID != nil {
		if _, ok := m.balances[*link.OwnerID]; !ok {
			m.balances[*link.OwnerID] = 0
		}
	}

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrLinkNotFound
	}

	found := *link

	return &found, nil
}

func (m *MemoryStore) Update(_ context.Context, link *shortener.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.links[link.Code]
	if !ok {
		return shortener.ErrLinkNotFound
	}

	// total_earned is owned by Credit.
	updated := *link
	updated.TotalEarned = stored.TotalEarned
	m.links[link.Code] = &updated

	return nil
}

func (m *MemoryStore) Exists(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.links[code]

	return ok, nil
}

func (m *MemoryStore) SaveView(_ context.Context, view *shortener.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[view.LinkID]; !ok {
		return fmt.Errorf("save view: link %d: %w", view.LinkID, shortener.ErrNotFound)
	}

	m.nextView++
	view.ID = m.nextView
	m.views = append(m.views, *view)

	return nil
}

func (m *MemoryStore) HasValidViewSince(_ context.Context, linkID int64, ip string, since time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, v := range m.views {
		if v.LinkID == linkID && v.ClientIP == ip && v.IsValid && !v.CreatedAt.Before(since) {
			return true, nil
		}
	}

	return false, nil
}

func (m *MemoryStore) Stats(_ context.Context, linkID int64) (*shortener.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &shortener.Stats{}

	for _, v := range m.views {
		if v.LinkID != linkID {
			continue
		}

		stats.TotalViews++

		if v.IsUnique {
			stats.UniqueViews++
		}

		if v.IsValid {
			stats.ValidViews++
		}

		stats.EarnedTotal += v.Earned
	}

	return stats, nil
}

// Views returns a copy of every view recorded for linkID.
func (m *MemoryStore) Views(linkID int64) []shortener.View {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []shortener.View

	for _, v := range m.views {
		if v.LinkID == linkID {
			out = append(out, v)
		}
	}

	return out
}

// Credit adds amount to the user's balance and the link's total in one step.
func (m *MemoryStore) Credit(_ context.Context, userID, linkID int64, amount shortener.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance, ok := m.balances[userID]
	if !ok {
		return fmt.Errorf("credit user %d: %w", userID, shortener.ErrNotFound)
	}

	code, ok := m.byID[linkID]
	if !ok {
		return fmt.Errorf("credit link %d: %w", linkID, shortener.ErrNotFound)
	}

	link := m.links[code]
	if link.OwnerID == nil || *link.OwnerID != userID {
		return fmt.Errorf("credit link %d: %w", linkID, shortener.ErrNotOwner)
	}

	m.balances[userID] = balance + amount
	link.TotalEarned += amount

	return nil
}
