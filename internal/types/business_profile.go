// Package types provides type definitions for structured data used throughout the analyzer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// companySizes maps the wizard's 1-based size bucket to its display range.
var companySizes = []string{"1-10", "11-50", "51-200", "201-1000", "1000+"}

// Priority levels accepted in BusinessProfile.Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// BusinessProfile is the wizard submission describing the business to analyze.
// Field order matters: validation reports the first failing required field.
type BusinessProfile struct {
	BusinessName      string            `json:"businessName" validate:"notblank"`
	BusinessEmail     string            `json:"businessEmail" validate:"required,email"`
	Industry          string            `json:"industry" validate:"notblank"`
	WebsiteURL        string            `json:"websiteUrl" validate:"required,url"`
	RevenueModel      string            `json:"revenueModel" validate:"notblank"`
	SalesProcess      string            `json:"salesProcess" validate:"notblank"`
	CompanySize       int               `json:"companySize,omitempty"`
	BusinessProcesses string            `json:"businessProcesses,omitempty"`
	PainPoints        string            `json:"painPoints,omitempty"`
	CurrentTechnology string            `json:"currentTechnology,omitempty"`
	Priorities        map[string]string `json:"priorities,omitempty" validate:"omitempty,dive,keys,required,endkeys,oneof=low medium high"`
	Tools             *Tools            `json:"tools,omitempty"`
}

// Tools lists the software the business already runs.
type Tools struct {
	CRM        string   `json:"crm,omitempty"`
	OtherTools []string `json:"otherTools,omitempty"`
}

// IsEmpty reports whether no tool information was supplied.
func (t *Tools) IsEmpty() bool {
	return t == nil || (strings.TrimSpace(t.CRM) == "" && len(t.OtherTools) == 0)
}

// CompanySizeLabel returns the display range for the size bucket, or "Unknown".
func (p *BusinessProfile) CompanySizeLabel() string {
	idx := p.CompanySize - 1
	if idx >= 0 && idx < len(companySizes) {
		return companySizes[idx]
	}
	return "Unknown"
}

// Validate checks required fields and shapes. The returned error is a
// *ValidationError naming the offending JSON field.
func (p *BusinessProfile) Validate() error {
	if p == nil {
		return &ValidationError{Field: "businessName", Message: "profile is required"}
	}
	return validateStruct(p)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns a shared validator that reports JSON field names.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// notblank is required with surrounding whitespace ignored.
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// validateStruct runs struct validation and converts the first failure
// into a ValidationError.
func validateStruct(v any) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	return &ValidationError{
		Field:   fieldName(fe),
		Message: describeTag(fe),
	}
}

// fieldName strips the struct prefix from the namespace, leaving the JSON path.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
