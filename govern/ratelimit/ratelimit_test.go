package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillfeed/gatekeeper/govern/countstore"
)

// counting store which always fails, simulating an outage
type brokenCountStore struct{}

func (brokenCountStore) GetCount(ctx context.Context, name, val string) (int, error) {
	return 0, fmt.Errorf("connection refused")
}

func (brokenCountStore) Increment(ctx context.Context, name, val string) error {
	return fmt.Errorf("connection refused")
}

func (brokenCountStore) Reserve(ctx context.Context, name, val string, cap int) (int, bool, error) {
	return 0, false, fmt.Errorf("connection refused")
}

func TestGovernorBoundary(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	g := NewGovernor(countstore.NewMemCountStore(time.Hour), time.Hour, 30, nil)

	// author with cap-1 accepted submissions: one more succeeds and raises
	// the count to cap
	for i := 0; i < 29; i++ {
		_, err := g.CheckAndReserve(ctx, "user1")
		assert.NoError(err)
	}
	res, err := g.CheckAndReserve(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(30, res.Current)
	assert.Equal(30, res.Limit)

	// the next submission in the same window fails with current == cap
	before := time.Now()
	_, err = g.CheckAndReserve(ctx, "user1")
	require.Error(t, err)
	var exc *Exceeded
	require.True(t, errors.As(err, &exc))
	assert.Equal(30, exc.Limit)
	assert.Equal(30, exc.Current)
	// fixed-horizon reset estimate: now + window
	assert.WithinDuration(before.Add(time.Hour), exc.ResetTime, 5*time.Second)
}

func TestGovernorAnonymousBypass(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := countstore.NewMemCountStore(time.Hour)
	g := NewGovernor(cs, time.Hour, 2, nil)

	for i := 0; i < 20; i++ {
		_, err := g.CheckAndReserve(ctx, "")
		assert.NoError(err)
	}

	// nothing was counted
	c, err := cs.GetCount(ctx, SubmissionCounter, "")
	assert.NoError(err)
	assert.Equal(0, c)
}

func TestGovernorUserNamedAnonymousIsGoverned(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := countstore.NewMemCountStore(time.Hour)
	g := NewGovernor(cs, time.Hour, 2, nil)

	// the display sentinel must not double as an enforcement bypass: a real
	// account whose ID is literally "anonymous" gets the same cap as anyone
	_, err := g.CheckAndReserve(ctx, AnonymousAuthor)
	assert.NoError(err)
	_, err = g.CheckAndReserve(ctx, AnonymousAuthor)
	assert.NoError(err)
	_, err = g.CheckAndReserve(ctx, AnonymousAuthor)
	var exc *Exceeded
	require.True(t, errors.As(err, &exc))
	assert.Equal(2, exc.Limit)
}

func TestGovernorFailOpen(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	g := NewGovernor(brokenCountStore{}, time.Hour, 1, nil)

	// far past what the cap would allow, still no rejection
	for i := 0; i < 10; i++ {
		res, err := g.CheckAndReserve(ctx, "user1")
		assert.NoError(err)
		assert.NotNil(res)
	}
}

func TestGovernorConcurrentContention(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// N concurrent submissions with only k slots remaining: exactly k
	// succeed under any interleaving
	cap := 30
	remaining := 7
	attempts := 40

	g := NewGovernor(countstore.NewMemCountStore(time.Hour), time.Hour, cap, nil)
	for i := 0; i < cap-remaining; i++ {
		_, err := g.CheckAndReserve(ctx, "user1")
		assert.NoError(err)
	}

	var wg sync.WaitGroup
	outcomes := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.CheckAndReserve(ctx, "user1")
			outcomes <- err
		}()
	}
	wg.Wait()
	close(outcomes)

	succeeded := 0
	limited := 0
	for err := range outcomes {
		if err == nil {
			succeeded++
			continue
		}
		var exc *Exceeded
		assert.True(errors.As(err, &exc))
		assert.Equal(cap, exc.Current)
		limited++
	}
	assert.Equal(remaining, succeeded)
	assert.Equal(attempts-remaining, limited)
}

func TestGovernorIndependentAuthors(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	g := NewGovernor(countstore.NewMemCountStore(time.Hour), time.Hour, 1, nil)

	_, err := g.CheckAndReserve(ctx, "user1")
	assert.NoError(err)
	_, err = g.CheckAndReserve(ctx, "user2")
	assert.NoError(err)

	_, err = g.CheckAndReserve(ctx, "user1")
	assert.Error(err)
}
