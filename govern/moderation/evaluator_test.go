package moderation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scorer returning a canned result
type stubScorer struct {
	result *Result
	err    error
}

func (s stubScorer) Score(ctx context.Context, text string, meta map[string]string) (*Result, error) {
	return s.result, s.err
}

type panicScorer struct{}

func (panicScorer) Score(ctx context.Context, text string, meta map[string]string) (*Result, error) {
	panic("scorer bug")
}

// scorer which blocks until ctx expires
type hangingScorer struct{}

func (hangingScorer) Score(ctx context.Context, text string, meta map[string]string) (*Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestEvaluateBlock(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ev := NewEvaluator(stubScorer{result: &Result{
		Blocked:    true,
		Reasons:    []string{"banned keyword"},
		Categories: []string{"keyword"},
		Severity:   SeverityHigh,
		Confidence: 0.1, // blocked wins regardless of confidence
	}}, 0.4, nil)

	decision, res := ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(DecisionBlock, decision)
	require.NotNil(t, res)
	// blocked implies the block action, even when the scorer forgot to set it
	assert.Equal(ActionBlock, res.SuggestedAction)
}

func TestEvaluateFlag(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// flag on suggested action
	ev := NewEvaluator(stubScorer{result: &Result{
		SuggestedAction: ActionFlag,
		Confidence:      0.1,
	}}, 0.4, nil)
	decision, _ := ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(DecisionFlag, decision)

	// flag on confidence above threshold
	ev = NewEvaluator(stubScorer{result: &Result{
		SuggestedAction: ActionAllow,
		Confidence:      0.41,
	}}, 0.4, nil)
	decision, _ = ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(DecisionFlag, decision)
}

func TestEvaluateAllow(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// confidence exactly at the threshold does not flag
	ev := NewEvaluator(stubScorer{result: &Result{
		SuggestedAction: ActionAllow,
		Confidence:      0.4,
	}}, 0.4, nil)
	decision, res := ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(DecisionAllow, decision)
	assert.NotNil(res)
}

func TestEvaluateConfidenceClamped(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ev := NewEvaluator(stubScorer{result: &Result{Confidence: 4.2}}, 0.4, nil)
	_, res := ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(1.0, res.Confidence)

	ev = NewEvaluator(stubScorer{result: &Result{Confidence: -0.5}}, 0.4, nil)
	decision, res := ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(0.0, res.Confidence)
	assert.Equal(DecisionAllow, decision)
}

func TestEvaluateSharedResultNotMutated(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// scorers may hand the same result instance to every caller (the keyword
	// scorer caches by content hash); normalization must not write through to
	// it, and concurrent evaluations of identical content must not race
	shared := &Result{
		Blocked:    true,
		Reasons:    []string{"banned keyword"},
		Confidence: 4.2,
	}
	ev := NewEvaluator(stubScorer{result: shared}, 0.4, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, res := ev.Evaluate(ctx, "identical text", "user1", nil)
			assert.Equal(DecisionBlock, decision)
			require.NotNil(t, res)
			assert.NotSame(shared, res)
			assert.Equal(ActionBlock, res.SuggestedAction)
			assert.Equal(1.0, res.Confidence)
		}()
	}
	wg.Wait()

	// the scorer's instance is untouched
	assert.Equal(4.2, shared.Confidence)
	assert.Equal(Action(""), shared.SuggestedAction)
}

func TestEvaluateFailOpen(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// scorer error: allowed through unscored, never an error to the caller
	ev := NewEvaluator(stubScorer{err: fmt.Errorf("scoring service down")}, 0.4, nil)
	decision, res := ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(DecisionAllow, decision)
	assert.Nil(res)

	// scorer panic: same
	ev = NewEvaluator(panicScorer{}, 0.4, nil)
	decision, res = ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(DecisionAllow, decision)
	assert.Nil(res)

	// nil result without error: same
	ev = NewEvaluator(stubScorer{}, 0.4, nil)
	decision, res = ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(DecisionAllow, decision)
	assert.Nil(res)
}

func TestEvaluateTimeout(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ev := NewEvaluator(hangingScorer{}, 0.4, nil)
	ev.Timeout = 20 * time.Millisecond

	start := time.Now()
	decision, res := ev.Evaluate(ctx, "some text", "user1", nil)
	assert.Equal(DecisionAllow, decision)
	assert.Nil(res)
	assert.Less(time.Since(start), 5*time.Second)
}

func TestExcerptTruncation(t *testing.T) {
	assert := assert.New(t)

	short := "short text"
	assert.Equal(short, excerpt(short))

	long := ""
	for i := 0; i < 100; i++ {
		long += "é"
	}
	got := excerpt(long)
	assert.Less(len([]rune(got)), 70)
}
