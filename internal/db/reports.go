package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/winlab-analyzer/internal/schemas"
	"github.com/jonathan/winlab-analyzer/internal/types"
)

// DefaultListLimit applies when a list call passes a non-positive limit.
const DefaultListLimit = 50

// SaveReport stores report with the profile it was produced from and
// returns the new report ID. The report payload must match the report schema.
func (db *DB) SaveReport(ctx context.Context, report *types.Report, profile *types.BusinessProfile) (uuid.UUID, error) {
	if report == nil || profile == nil {
		return uuid.Nil, fmt.Errorf("report and profile are required")
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := schemas.ValidateReportJSON(reportJSON); err != nil {
		return uuid.Nil, fmt.Errorf("report does not match schema: %w", err)
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	id := uuid.New()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO reports (id, business_name, business_email, industry, profile, report, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, profile.BusinessName, profile.BusinessEmail, profile.Industry, profileJSON, reportJSON, report.GeneratedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save report: %w", err)
	}
	return id, nil
}

// GetReport retrieves a report by ID. It returns nil, nil when no report
// has that ID.
func (db *DB) GetReport(ctx context.Context, id uuid.UUID) (*StoredReport, error) {
	var (
		stored     StoredReport
		reportJSON []byte
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, business_name, business_email, industry, report, created_at
		 FROM reports WHERE id = $1`,
		id,
	).Scan(&stored.ID, &stored.BusinessName, &stored.BusinessEmail, &stored.Industry, &reportJSON, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	stored.Report = &types.Report{}
	if err := json.Unmarshal(reportJSON, stored.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", id, err)
	}
	return &stored, nil
}

// GetReportProfile retrieves the business profile a report was produced from.
func (db *DB) GetReportProfile(ctx context.Context, id uuid.UUID) (*types.BusinessProfile, error) {
	var profileJSON []byte
	err := db.conn.QueryRowContext(ctx, `SELECT profile FROM reports WHERE id = $1`, id).Scan(&profileJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report profile: %w", err)
	}

	var profile types.BusinessProfile
	if err := json.Unmarshal(profileJSON, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", id, err)
	}
	return &profile, nil
}

// ListReports returns the newest reports first.
func (db *DB) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, business_name, industry, generated_at, created_at
		 FROM reports ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]ReportSummary, 0)
	for rows.Next() {
		var s ReportSummary
		if err := rows.Scan(&s.ID, &s.BusinessName, &s.Industry, &s.GeneratedAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return summaries, nil
}

// DeleteReport removes a report. It returns ErrNotFound when no report has
// that ID.
func (db *DB) DeleteReport(ctx context.Context, id uuid.UUID) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
