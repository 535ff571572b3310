package attendance

import (
	"context"
	"errors"
	"sync"
	"time"

	"communitybot/internal/ledger"
	"communitybot/internal/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sent struct {
	kind    string
	target  string
	content string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sent
	fail bool
}

func (m *fakeMessenger) record(kind, target, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("discord unavailable")
	}
	m.sent = append(m.sent, sent{kind, target, content})
	return nil
}

func (m *fakeMessenger) Reply(_ context.Context, _, messageID, content string) error {
	return m.record("reply", messageID, content)
}

func (m *fakeMessenger) React(_ context.Context, _, messageID, emoji string) error {
	return m.record("react", messageID, emoji)
}

func (m *fakeMessenger) SendDirect(_ context.Context, userID, content string) error {
	return m.record("dm", userID, content)
}

func (m *fakeMessenger) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.kind == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	backend   *store.MemoryBackend
	clock     *fakeClock
	messenger *fakeMessenger
	ledger    *ledger.DocumentLedger
	policy    *Policy
}

func newFixture() *fixture {
	f := &fixture{
		backend:   store.NewMemoryBackend(),
		clock:     newFakeClock(),
		messenger: &fakeMessenger{},
	}
	f.ledger = ledger.NewDocumentLedger(f.backend, f.clock)
	f.policy = NewPolicy(f.backend, f.messenger, f.clock, "announce", nil)
	return f
}

func (f *fixture) balance(memberID string) int64 {
	b, err := f.ledger.Balance(context.Background(), memberID)
	if err != nil {
		panic(err)
	}
	return b
}

// flakyLedger fails the next failures awards, then delegates
type flakyLedger struct {
	*ledger.DocumentLedger
	mu       sync.Mutex
	failures int
}

func (l *flakyLedger) Award(ctx context.Context, memberID, displayName string, delta int64) (int64, error) {
	l.mu.Lock()
	if l.failures > 0 {
		l.failures--
		l.mu.Unlock()
		return 0, errors.New("ledger unavailable")
	}
	l.mu.Unlock()
	return l.DocumentLedger.Award(ctx, memberID, displayName, delta)
}
