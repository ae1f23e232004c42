//nolint:revive // types is a standard Go package name pattern
package types

// ConsultationRequest is the follow-up scheduling form shown under a report.
type ConsultationRequest struct {
	Name     string `json:"consultName" validate:"notblank"`
	Email    string `json:"consultEmail" validate:"required,email"`
	Date     string `json:"consultDate" validate:"notblank"`
	Time     string `json:"consultTime" validate:"notblank"`
	Phone    string `json:"consultPhone,omitempty"`
	Notes    string `json:"consultNotes,omitempty"`
	ReportID string `json:"reportId,omitempty" validate:"omitempty,uuid"`
}

// Validate checks the required scheduling fields.
func (r *ConsultationRequest) Validate() error {
	if r == nil {
		return &ValidationError{Field: "consultName", Message: "request is required"}
	}
	return validateStruct(r)
}
