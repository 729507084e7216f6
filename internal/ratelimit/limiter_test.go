package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testClock drives the limiter deterministically.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *testClock) {
	clock := &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := New()
	l.now = clock.Now
	return l, clock
}

func TestCheckAllowsUpToMax(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 5; i++ {
		ok, _ := l.Check("1.2.3.4", CategoryLogin)
		require.True(t, ok, "request %d should be allowed", i+1)
	}

	ok, retry := l.Check("1.2.3.4", CategoryLogin)
	require.False(t, ok)
	require.Equal(t, time.Minute, retry)
}

func TestCheckRecoversAfterWindow(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 5; i++ {
		ok, _ := l.Check("1.2.3.4", CategoryLogin)
		require.True(t, ok)
	}
	ok, _ := l.Check("1.2.3.4", CategoryLogin)
	require.False(t, ok)

	clock.Advance(61 * time.Second)
	ok, _ = l.Check("1.2.3.4", CategoryLogin)
	require.True(t, ok)
}

func TestCheckSlidesNotResets(t *testing.T) {
	l, clock := newTestLimiter()

	// Spread 5 requests evenly over the window: one every 12s.
	for i := 0; i < 5; i++ {
		ok, _ := l.Check("1.2.3.4", CategoryLogin)
		require.True(t, ok)
		clock.Advance(12 * time.Second)
	}

	// 60s after the first request only the first has aged out; a burst now
	// must not exceed the per-window max in the trailing slice.
	ok, _ := l.Check("1.2.3.4", CategoryLogin)
	require.True(t, ok)
	ok, _ = l.Check("1.2.3.4", CategoryLogin)
	require.False(t, ok, "trailing window already holds max requests")
}

func TestCheckKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 5; i++ {
		ok, _ := l.Check("1.2.3.4", CategoryLogin)
		require.True(t, ok)
	}
	ok, _ := l.Check("1.2.3.4", CategoryLogin)
	require.False(t, ok)

	ok, _ = l.Check("5.6.7.8", CategoryLogin)
	require.True(t, ok, "other clients are unaffected")
	ok, _ = l.Check("1.2.3.4", CategoryPublicForm)
	require.True(t, ok, "other categories are unaffected")
}

func TestCategoryLimitsDiffer(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 10; i++ {
		ok, _ := l.Check("1.2.3.4", CategoryPublicForm)
		require.True(t, ok)
	}
	ok, retry := l.Check("1.2.3.4", CategoryPublicForm)
	require.False(t, ok)
	require.Equal(t, time.Minute, retry)

	for i := 0; i < 100; i++ {
		ok, _ := l.Check("9.9.9.9", CategoryAPIGeneral)
		require.True(t, ok, "request %d", i+1)
	}
	ok, _ = l.Check("9.9.9.9", CategoryAPIGeneral)
	require.False(t, ok)
}

func TestBlockAndExpiry(t *testing.T) {
	l, clock := newTestLimiter()

	require.False(t, l.IsBlocked("1.2.3.4"))

	l.Block("1.2.3.4", 0)
	require.True(t, l.IsBlocked("1.2.3.4"))
	require.Equal(t, LockoutDuration, l.BlockedFor("1.2.3.4"))

	clock.Advance(299 * time.Second)
	require.True(t, l.IsBlocked("1.2.3.4"))

	clock.Advance(2 * time.Second)
	require.False(t, l.IsBlocked("1.2.3.4"))
	require.Zero(t, l.BlockedFor("1.2.3.4"))
}

func TestRecordFailedLoginThreshold(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 4; i++ {
		require.False(t, l.RecordFailedLogin("1.2.3.4"), "attempt %d below threshold", i+1)
	}
	require.True(t, l.RecordFailedLogin("1.2.3.4"), "5th failure reaches threshold")
}

func TestRecordFailedLoginWindowDecay(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 4; i++ {
		l.RecordFailedLogin("1.2.3.4")
	}

	clock.Advance(FailedLoginWindow + time.Second)
	require.False(t, l.RecordFailedLogin("1.2.3.4"), "old failures aged out")
}

func TestClearFailedLoginsResetsCounter(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 4; i++ {
		l.RecordFailedLogin("1.2.3.4")
	}
	l.ClearFailedLogins("1.2.3.4")

	for i := 0; i < 4; i++ {
		require.False(t, l.RecordFailedLogin("1.2.3.4"), "counter was reset, attempt %d", i+1)
	}
}

func TestConcurrentCheck(t *testing.T) {
	l := New()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				l.Check(fmt.Sprintf("10.0.0.%d", g), CategoryAPIGeneral)
				l.RecordFailedLogin(fmt.Sprintf("10.0.0.%d", g))
				l.IsBlocked(fmt.Sprintf("10.0.0.%d", g))
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	// Each key saw 50 requests, well under the general cap.
	require.Equal(t, 50, 100-l.Remaining("10.0.0.0", CategoryAPIGeneral))
}
