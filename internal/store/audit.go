// ABOUTME: Invocation audit methods for recording and listing tool calls
// ABOUTME: Records which tool ran, how it ended, and how long it took

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// maxErrorDetail bounds the stored failure detail. Tool output can be
// arbitrarily large; the audit trail keeps only the head.
const maxErrorDetail = 4096

// RecordInvocation appends a tool invocation to the audit trail.
// Generates ID and Timestamp if not set. Error detail is truncated
// to maxErrorDetail bytes.
func (s *SQLiteStore) RecordInvocation(ctx context.Context, rec *InvocationRecord) error {
	// Generate ID if not set
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	// Generate timestamp if not set
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	var errDetail *string
	if rec.Error != "" {
		detail := truncateDetail(rec.Error)
		errDetail = &detail
	}

	query := `
		INSERT INTO invocations (invocation_id, tool, outcome, duration_ms, ts, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Tool,
		rec.Outcome,
		rec.DurationMS,
		rec.Timestamp.UTC().Format(time.RFC3339),
		errDetail,
	)
	if err != nil {
		return fmt.Errorf("inserting invocation: %w", err)
	}

	s.logger.Debug("recorded invocation",
		"id", rec.ID,
		"tool", rec.Tool,
		"outcome", rec.Outcome,
		"duration_ms", rec.DurationMS,
	)
	return nil
}

// GetInvocation retrieves a single audit record by ID.
func (s *SQLiteStore) GetInvocation(ctx context.Context, id string) (*InvocationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT invocation_id, tool, outcome, duration_ms, ts, error
		FROM invocations WHERE invocation_id = ?
	`, id)

	rec, err := scanInvocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// truncateDetail caps failure detail at maxErrorDetail bytes.
func truncateDetail(detail string) string {
	if len(detail) > maxErrorDetail {
		return detail[:maxErrorDetail]
	}
	return detail
}

// normalizeLimit applies default (100) and cap (1000) to a list limit.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

// invocationQueryArgs holds filter fields converted for the query.
type invocationQueryArgs struct {
	sinceStr   *string
	untilStr   *string
	outcomeStr *string
}

// buildInvocationQueryArgs converts filter time/outcome fields to query args.
func buildInvocationQueryArgs(f InvocationFilter) invocationQueryArgs {
	var args invocationQueryArgs
	if f.Since != nil {
		s := f.Since.UTC().Format(time.RFC3339)
		args.sinceStr = &s
	}
	if f.Until != nil {
		s := f.Until.UTC().Format(time.RFC3339)
		args.untilStr = &s
	}
	if f.Outcome != nil {
		o := string(*f.Outcome)
		args.outcomeStr = &o
	}
	return args
}

// scanInvocation scans a row into an InvocationRecord.
func scanInvocation(scanner interface{ Scan(dest ...any) error }) (InvocationRecord, error) {
	var rec InvocationRecord
	var outcomeStr, tsStr string
	var errDetail *string

	if err := scanner.Scan(
		&rec.ID,
		&rec.Tool,
		&outcomeStr,
		&rec.DurationMS,
		&tsStr,
		&errDetail,
	); err != nil {
		return rec, fmt.Errorf("scanning invocation: %w", err)
	}

	rec.Outcome = Outcome(outcomeStr)
	var err error
	rec.Timestamp, err = time.Parse(time.RFC3339, tsStr)
	if err != nil {
		return rec, fmt.Errorf("parsing timestamp: %w", err)
	}

	if errDetail != nil {
		rec.Error = *errDetail
	}
	return rec, nil
}

const invocationQuery = `
	SELECT invocation_id, tool, outcome, duration_ms, ts, error
	FROM invocations
	WHERE (? IS NULL OR ts >= ?)
	  AND (? IS NULL OR ts <= ?)
	  AND (? IS NULL OR tool = ?)
	  AND (? IS NULL OR outcome = ?)
	ORDER BY ts DESC
	LIMIT ?
`

// ListInvocations returns invocation records matching the filter criteria.
// Results are returned newest first (DESC by timestamp).
func (s *SQLiteStore) ListInvocations(ctx context.Context, f InvocationFilter) ([]InvocationRecord, error) {
	limit := normalizeLimit(f.Limit)
	args := buildInvocationQueryArgs(f)

	rows, err := s.db.QueryContext(ctx, invocationQuery,
		args.sinceStr, args.sinceStr,
		args.untilStr, args.untilStr,
		f.Tool, f.Tool,
		args.outcomeStr, args.outcomeStr,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying invocations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []InvocationRecord
	for rows.Next() {
		rec, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invocations: %w", err)
	}

	if records == nil {
		records = []InvocationRecord{}
	}
	return records, nil
}
