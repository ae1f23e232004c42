package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/winlab-analyzer/internal/config"
)

const shareIssuer = "winlab-analyzer"

// ErrInvalidShareToken indicates a share link that is expired, tampered with
// or otherwise unusable.
type ErrInvalidShareToken struct {
	Reason string
	Cause  error
}

func (e *ErrInvalidShareToken) Error() string {
	return fmt.Sprintf("invalid share token: %s", e.Reason)
}

func (e *ErrInvalidShareToken) Unwrap() error {
	return e.Cause
}

// ShareClaims are the claims carried by a report share token.
type ShareClaims struct {
	ReportID uuid.UUID `json:"report_id"`
	jwt.RegisteredClaims
}

// ShareService issues and checks signed, expiring report share tokens.
type ShareService struct {
	config *config.ShareConfig
	now    func() time.Time
}

// NewShareService creates a ShareService. It returns nil when sharing is
// disabled in cfg.
func NewShareService(cfg *config.ShareConfig) *ShareService {
	if cfg == nil || !cfg.Enabled() {
		return nil
	}
	return &ShareService{config: cfg, now: time.Now}
}

// GenerateToken signs a token granting read access to one report.
func (s *ShareService) GenerateToken(reportID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.TTL)

	claims := &ShareClaims{
		ReportID: reportID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    shareIssuer,
			Subject:   reportID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign share token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken checks a share token and returns the report it grants.
func (s *ShareService) ValidateToken(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, &ErrInvalidShareToken{Reason: "token is empty"}
	}

	claims := &ShareClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	},
		jwt.WithIssuer(shareIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, &ErrInvalidShareToken{Reason: "token expired", Cause: err}
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, &ErrInvalidShareToken{Reason: "invalid signature", Cause: err}
		case errors.Is(err, jwt.ErrTokenMalformed):
			return uuid.Nil, &ErrInvalidShareToken{Reason: "malformed token", Cause: err}
		default:
			return uuid.Nil, &ErrInvalidShareToken{Reason: "failed to parse token", Cause: err}
		}
	}
	if !token.Valid || claims.ReportID == uuid.Nil {
		return uuid.Nil, &ErrInvalidShareToken{Reason: "token is not valid"}
	}
	return claims.ReportID, nil
}
