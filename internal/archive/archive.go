// Package archive keeps copies of raw completion text for troubleshooting.
package archive

import (
	"context"
	"regexp"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02-15-04-05"

// Archive stores raw completion text and returns where it was written.
type Archive interface {
	Store(ctx context.Context, businessName, text string) (string, error)
}

// Nop discards everything.
type Nop struct{}

// Store implements Archive.
func (Nop) Store(context.Context, string, string) (string, error) {
	return "", nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName turns a business name into a safe file name stem.
func SanitizeName(name string) string {
	clean := unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "-")
	clean = strings.Trim(clean, "-.")
	if clean == "" {
		return "report"
	}
	return clean
}

// objectName is {sanitized name}-{timestamp}.txt.
func objectName(businessName string, at time.Time) string {
	return SanitizeName(businessName) + "-" + at.Format(timestampLayout) + ".txt"
}
