package db

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jonathan/winlab-analyzer/internal/types"
)

// CreateConsultation stores a validated consultation request with status
// pending.
func (db *DB) CreateConsultation(ctx context.Context, req *types.ConsultationRequest) (*Consultation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := &Consultation{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Date:   req.Date,
		Time:   req.Time,
		Notes:  req.Notes,
		Status: ConsultationPending,
	}
	if req.ReportID != "" {
		reportID, err := uuid.Parse(req.ReportID)
		if err != nil {
			return nil, &types.ValidationError{Field: "reportId", Message: "must be a valid UUID"}
		}
		c.ReportID = &reportID
	}

	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO consultations (report_id, name, email, phone, date, time, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		c.ReportID, c.Name, c.Email, c.Phone, c.Date, c.Time, c.Notes, c.Status,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create consultation: %w", err)
	}
	return c, nil
}

// ListConsultations returns consultations newest first. An empty status
// returns all of them.
func (db *DB) ListConsultations(ctx context.Context, status string) ([]Consultation, error) {
	query := `SELECT id, report_id, name, email, phone, date, time, notes, status, created_at
		 FROM consultations`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	consultations := make([]Consultation, 0)
	for rows.Next() {
		var (
			c        Consultation
			reportID uuid.NullUUID
		)
		if err := rows.Scan(&c.ID, &reportID, &c.Name, &c.Email, &c.Phone, &c.Date, &c.Time, &c.Notes, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan consultation: %w", err)
		}
		if reportID.Valid {
			id := reportID.UUID
			c.ReportID = &id
		}
		consultations = append(consultations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}

// UpdateConsultationStatus sets the status of a consultation.
func (db *DB) UpdateConsultationStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !slices.Contains(ConsultationStatuses, status) {
		return &types.ValidationError{Field: "status", Message: fmt.Sprintf("must be one of %v", ConsultationStatuses)}
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE consultations SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
