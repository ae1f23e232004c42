package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/winlab-analyzer/internal/types"
)

// Consultation statuses.
const (
	ConsultationPending   = "pending"
	ConsultationConfirmed = "confirmed"
	ConsultationCompleted = "completed"
	ConsultationCancelled = "cancelled"
)

// ConsultationStatuses lists the accepted consultation statuses.
var ConsultationStatuses = []string{
	ConsultationPending,
	ConsultationConfirmed,
	ConsultationCompleted,
	ConsultationCancelled,
}

// MaxEvents is the number of events kept; older ones are pruned on insert.
const MaxEvents = 1000

// StoredReport is a persisted report with its row metadata.
type StoredReport struct {
	ID            uuid.UUID     `json:"id"`
	BusinessName  string        `json:"business_name"`
	BusinessEmail string        `json:"business_email"`
	Industry      string        `json:"industry"`
	Report        *types.Report `json:"report"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ReportSummary is the list view of a stored report.
type ReportSummary struct {
	ID           uuid.UUID `json:"id"`
	BusinessName string    `json:"business_name"`
	Industry     string    `json:"industry"`
	GeneratedAt  time.Time `json:"generated_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Consultation is a stored consultation request.
type Consultation struct {
	ID        uuid.UUID  `json:"id"`
	ReportID  *uuid.UUID `json:"report_id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Notes     string     `json:"notes,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// Event is one analysis lifecycle entry.
type Event struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}
