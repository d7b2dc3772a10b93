package quota

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/jonwraymond/coachkit/tier"
)

// Unlimited marks a tier with no monthly ceiling.
const Unlimited = -1

// ErrUserNotFound is returned by stores when no quota record exists.
var ErrUserNotFound = errors.New("quota: user not found")

// Record is a user's durable quota state.
type Record struct {
	UserID            string
	Tier              tier.Tier
	ScenariosAccessed int
	LastReset         time.Time
}

// Store is the external user store surface the manager needs.
//
// Contract:
// - GetQuota returns ErrUserNotFound when the user has no record.
// - SaveQuota upserts the record.
// - Implementations need not serialize calls per user; the manager does.
type Store interface {
	GetQuota(ctx context.Context, userID string) (Record, error)
	SaveQuota(ctx context.Context, rec Record) error
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed bool
	Used    int
	Limit   int // Unlimited for premium
}

// LimitFor returns the monthly scenario ceiling for a tier.
func LimitFor(t tier.Tier) int {
	switch t {
	case tier.Free:
		return 5
	case tier.Basic:
		return 20
	case tier.Premium:
		return Unlimited
	default:
		return 5
	}
}

const lockStripes = 64

// Manager applies tier ceilings and the monthly reset over a Store.
type Manager struct {
	store Store
	now   func() time.Time

	locks [lockStripes]sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source for month-boundary tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager over the given store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CheckAndConsume admits the user if they are under the ceiling for
// the given tier, incrementing and persisting the counter when
// admitted. A denial mutates nothing. Users without a record are
// provisioned with a fresh one. The whole operation is serialized per
// user.
func (m *Manager) CheckAndConsume(ctx context.Context, userID string, t tier.Tier) (Decision, error) {
	lock := m.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := m.store.GetQuota(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		rec = Record{UserID: userID, LastReset: m.now()}
	} else if err != nil {
		return Decision{}, fmt.Errorf("quota: load record: %w", err)
	}

	// The caller's identity is authoritative for the tier.
	rec.Tier = t

	rec, reset := m.applyReset(rec)
	limit := LimitFor(t)

	if limit != Unlimited && rec.ScenariosAccessed >= limit {
		// Denied. A reset still needs to land so it happens once.
		if reset {
			if err := m.store.SaveQuota(ctx, rec); err != nil {
				return Decision{}, fmt.Errorf("quota: persist reset: %w", err)
			}
		}
		return Decision{Allowed: false, Used: rec.ScenariosAccessed, Limit: limit}, nil
	}

	rec.ScenariosAccessed++
	if err := m.store.SaveQuota(ctx, rec); err != nil {
		return Decision{}, fmt.Errorf("quota: persist usage: %w", err)
	}

	return Decision{Allowed: true, Used: rec.ScenariosAccessed, Limit: limit}, nil
}

// Status reports usage without consuming a slot. The monthly reset is
// applied to the view but not persisted.
func (m *Manager) Status(ctx context.Context, userID string) (Decision, error) {
	rec, err := m.store.GetQuota(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("quota: load record: %w", err)
	}

	rec, _ = m.applyReset(rec)
	limit := LimitFor(rec.Tier)

	allowed := limit == Unlimited || rec.ScenariosAccessed < limit
	return Decision{Allowed: allowed, Used: rec.ScenariosAccessed, Limit: limit}, nil
}

// applyReset zeroes the counter when the current (year, month) differs
// from the record's last reset. Reports whether a reset happened.
func (m *Manager) applyReset(rec Record) (Record, bool) {
	now := m.now()
	if rec.LastReset.Year() == now.Year() && rec.LastReset.Month() == now.Month() {
		return rec, false
	}
	rec.ScenariosAccessed = 0
	rec.LastReset = now
	return rec, true
}

func (m *Manager) lockFor(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &m.locks[h.Sum32()%lockStripes]
}
