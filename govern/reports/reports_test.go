package reports

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerSubmit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	store := NewMemReportStore()
	ledger := NewLedger(store, nil)

	report, err := ledger.Submit(ctx, "post123", "user1", "spam", "spam")
	require.NoError(t, err)
	assert.Equal(StatusPending, report.Status)
	assert.Equal("post123", report.ContentID)
	assert.Equal("user1", report.ReporterID)
	assert.NotEmpty(report.ID)

	got, err := store.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(*report, *got)
}

func TestLedgerUnauthenticated(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	ledger := NewLedger(NewMemReportStore(), nil)

	_, err := ledger.Submit(ctx, "post123", "", "spam", "spam")
	require.Error(t, err)
	var re *ReportError
	require.True(t, errors.As(err, &re))
	assert.Equal(KindUnauthenticated, re.Kind)
}

func TestLedgerMissingFields(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	store := NewMemReportStore()
	ledger := NewLedger(store, nil)

	fixtures := []struct {
		contentID, reason, category string
	}{
		{"", "spam", "spam"},
		{"post123", "", "spam"},
		{"post123", "spam", ""},
	}
	for _, fix := range fixtures {
		_, err := ledger.Submit(ctx, fix.contentID, "user1", fix.reason, fix.category)
		require.Error(t, err)
		var re *ReportError
		require.True(t, errors.As(err, &re))
		assert.Equal(KindMissingFields, re.Kind)
	}

	// nothing was persisted
	out, err := store.ListByContent(ctx, "post123")
	require.NoError(t, err)
	assert.Empty(out)
}

func TestLedgerDuplicatesAccepted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	store := NewMemReportStore()
	ledger := NewLedger(store, nil)

	// the same reporter reporting the same content twice yields two records;
	// dedup is the review collaborator's policy, not the ledger's
	r1, err := ledger.Submit(ctx, "post123", "user1", "spam", "spam")
	require.NoError(t, err)
	r2, err := ledger.Submit(ctx, "post123", "user1", "spam", "spam")
	require.NoError(t, err)
	assert.NotEqual(r1.ID, r2.ID)

	out, err := store.ListByContent(ctx, "post123")
	require.NoError(t, err)
	assert.Len(out, 2)
}

func TestMemStoreUpdateStatus(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	store := NewMemReportStore()
	ledger := NewLedger(store, nil)

	report, err := ledger.Submit(ctx, "post123", "user1", "harassment", "abuse")
	require.NoError(t, err)

	assert.NoError(store.UpdateStatus(ctx, report.ID, StatusReviewed))
	got, err := store.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(StatusReviewed, got.Status)

	assert.Error(store.UpdateStatus(ctx, "missing", StatusDismissed))
}

func TestReportIDMonotonic(t *testing.T) {
	assert := assert.New(t)

	clock := NewRIDClock(0)
	var ids []string
	for i := 0; i < 1000; i++ {
		ids = append(ids, clock.Next().String())
	}

	sorted := append([]string{}, ids...)
	sort.Strings(sorted)
	// generation order == lexicographic order
	assert.Equal(ids, sorted)

	// and all unique
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.False(seen[id])
		seen[id] = true
	}
}

func TestReportIDSyntax(t *testing.T) {
	assert := assert.New(t)

	clock := NewRIDClock(42)
	id := clock.Next()

	parsed, err := ParseReportID(id.String())
	assert.NoError(err)
	assert.Equal(id, parsed)

	_, err = ParseReportID("")
	assert.Error(err)
	_, err = ParseReportID("too-short")
	assert.Error(err)
	_, err = ParseReportID("0000000000000")
	assert.Error(err)
}
