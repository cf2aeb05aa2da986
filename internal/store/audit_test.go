// ABOUTME: Tests for invocation audit operations
// ABOUTME: Covers Record and List with filtering for the invocations table

package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocations_Record(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &InvocationRecord{
		Tool:       "shell_run",
		Outcome:    OutcomeOK,
		DurationMS: 42,
	}

	err := store.RecordInvocation(ctx, rec)
	require.NoError(t, err)

	// Should have generated ID and timestamp
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestInvocations_Record_TruncatesError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	longDetail := strings.Repeat("x", maxErrorDetail+500)
	rec := &InvocationRecord{
		Tool:    "shell_run",
		Outcome: OutcomeError,
		Error:   longDetail,
	}
	require.NoError(t, store.RecordInvocation(ctx, rec))

	records, err := store.ListInvocations(ctx, InvocationFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Len(t, records[0].Error, maxErrorDetail)
}

func TestInvocations_Get(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &InvocationRecord{
		Tool:       "fs_read",
		Outcome:    OutcomeError,
		DurationMS: 12,
		Error:      "not found",
	}
	require.NoError(t, store.RecordInvocation(ctx, rec))

	got, err := store.GetInvocation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Tool, got.Tool)
	assert.Equal(t, rec.Outcome, got.Outcome)
	assert.Equal(t, rec.DurationMS, got.DurationMS)
	assert.Equal(t, rec.Error, got.Error)
}

func TestInvocations_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetInvocation(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvocations_List_NoFilter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	for i, tool := range []string{"fs_read", "fs_list", "shell_run"} {
		rec := &InvocationRecord{
			Tool:      tool,
			Outcome:   OutcomeOK,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.RecordInvocation(ctx, rec))
	}

	records, err := store.ListInvocations(ctx, InvocationFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Should be newest first
	assert.Equal(t, "shell_run", records[0].Tool)
}

func TestInvocations_List_ByTool(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, tool := range []string{"fs_read", "shell_run", "fs_read"} {
		rec := &InvocationRecord{
			Tool:    tool,
			Outcome: OutcomeOK,
		}
		require.NoError(t, store.RecordInvocation(ctx, rec))
	}

	tool := "fs_read"
	records, err := store.ListInvocations(ctx, InvocationFilter{Tool: &tool})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	for _, rec := range records {
		assert.Equal(t, "fs_read", rec.Tool)
	}
}

func TestInvocations_List_ByOutcome(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	outcomes := []Outcome{OutcomeOK, OutcomeInvalidArgs, OutcomeError, OutcomeOK}
	for _, outcome := range outcomes {
		rec := &InvocationRecord{
			Tool:    "fs_read",
			Outcome: outcome,
		}
		require.NoError(t, store.RecordInvocation(ctx, rec))
	}

	outcome := OutcomeOK
	records, err := store.ListInvocations(ctx, InvocationFilter{Outcome: &outcome})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	for _, rec := range records {
		assert.Equal(t, OutcomeOK, rec.Outcome)
	}
}

func TestInvocations_List_BySince(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		rec := &InvocationRecord{
			Tool:      "fs_read",
			Outcome:   OutcomeOK,
			Timestamp: base.Add(time.Duration(i) * 10 * time.Minute),
		}
		require.NoError(t, store.RecordInvocation(ctx, rec))
	}

	// Filter to records after 15 minutes in
	since := base.Add(15 * time.Minute)
	records, err := store.ListInvocations(ctx, InvocationFilter{Since: &since})
	require.NoError(t, err)
	assert.Len(t, records, 1) // Only the record at 20 minutes
}

func TestInvocations_List_Limit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	for i := 0; i < 5; i++ {
		rec := &InvocationRecord{
			Tool:      "fs_read",
			Outcome:   OutcomeOK,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.RecordInvocation(ctx, rec))
	}

	records, err := store.ListInvocations(ctx, InvocationFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestInvocations_List_Empty(t *testing.T) {
	store := setupTestStore(t)

	records, err := store.ListInvocations(context.Background(), InvocationFilter{})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero uses default", limit: 0, want: 100},
		{name: "negative uses default", limit: -5, want: 100},
		{name: "in range unchanged", limit: 50, want: 50},
		{name: "over cap clamped", limit: 5000, want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeLimit(tt.limit))
		})
	}
}
