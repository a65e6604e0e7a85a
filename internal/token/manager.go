// Package token issues, validates, rotates and revokes the JWT pair used
// for authentication. Access tokens are short-lived signed assertions;
// refresh tokens additionally carry a jti correlated 1:1 with a persisted
// record, and that record — not the signature — is the authority for
// revocation.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-server/internal/config"
	"hospital-server/internal/models"
)

// ErrUnauthenticated is the single outcome for every token failure:
// expired, tampered, revoked or unknown. Callers never learn which; the
// distinction lives in debug logs only.
var ErrUnauthenticated = errors.New("unauthenticated")

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims is the JWT payload for both token types. The jti rides in
// RegisteredClaims.ID and is set for refresh tokens only.
type Claims struct {
	Role models.Role `json:"role"`
	Type string      `json:"type"`
	jwt.RegisteredClaims
}

// Pair is an access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Manager drives the refresh-token lifecycle against the record store.
type Manager struct {
	db  *gorm.DB
	cfg *config.Config
	log zerolog.Logger
}

// NewManager creates a token Manager.
func NewManager(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *Manager {
	return &Manager{db: db, cfg: cfg, log: log.With().Str("component", "token").Logger()}
}

// Issue generates a token pair for an already-authenticated user and
// persists the refresh token's record.
func (m *Manager) Issue(userID string, role models.Role) (Pair, error) {
	return m.issue(m.db, userID, role)
}

func (m *Manager) issue(tx *gorm.DB, userID string, role models.Role) (Pair, error) {
	access, err := m.signAccess(userID, role)
	if err != nil {
		return Pair{}, err
	}

	jti := uuid.New().String()
	expiresAt := time.Now().Add(time.Duration(m.cfg.JWTRefreshExpirationHours) * time.Hour)
	refresh, err := m.signRefresh(userID, role, jti, expiresAt)
	if err != nil {
		return Pair{}, err
	}

	record := models.RefreshToken{UserID: userID, JTI: jti, ExpiresAt: expiresAt}
	if err := tx.Create(&record).Error; err != nil {
		return Pair{}, fmt.Errorf("failed to store refresh token record: %w", err)
	}

	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) signAccess(userID string, role models.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		Type: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(m.cfg.JWTExpirationMinutes) * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (m *Manager) signRefresh(userID string, role models.Role, jti string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		Role: role,
		Type: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.JWTRefreshSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// ValidateAccess checks an access token's signature, expiry and type.
func (m *Manager) ValidateAccess(tokenString string) (*Claims, error) {
	return m.parse(tokenString, m.cfg.JWTSecret, typeAccess)
}

// ValidateRefresh checks a refresh token's signature, expiry and type, then
// cross-checks the persisted record. Possession of a cryptographically
// valid token is not sufficient: a missing, revoked or expired record
// rejects it.
func (m *Manager) ValidateRefresh(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString, m.cfg.JWTRefreshSecret, typeRefresh)
	if err != nil {
		return nil, err
	}

	var record models.RefreshToken
	err = m.db.Where("jti = ? AND user_id = ?", claims.ID, claims.Subject).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			m.log.Debug().Str("jti", claims.ID).Msg("refresh token has no matching record")
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if record.Revoked || record.ExpiresAt.Before(time.Now()) {
		m.log.Debug().Str("jti", claims.ID).Bool("revoked", record.Revoked).Msg("refresh token record invalid")
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Rotate exchanges a refresh token for a new pair. Revoking the old record
// and persisting the new one happen in one transaction, and the revoke is a
// conditional write: of two concurrent rotations with the same token,
// exactly one flips revoked false -> true and the other fails.
func (m *Manager) Rotate(tokenString string) (Pair, error) {
	claims, err := m.parse(tokenString, m.cfg.JWTRefreshSecret, typeRefresh)
	if err != nil {
		return Pair{}, err
	}
	if claims.ID == "" {
		m.log.Debug().Str("user", claims.Subject).Msg("refresh token missing jti")
		return Pair{}, ErrUnauthenticated
	}

	var pair Pair
	err = m.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND user_id = ? AND revoked = ? AND expires_at > ?",
				claims.ID, claims.Subject, false, time.Now()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			m.log.Debug().Str("jti", claims.ID).Str("user", claims.Subject).
				Msg("rotation refused: record missing, revoked or expired")
			return ErrUnauthenticated
		}

		p, err := m.issue(tx, claims.Subject, claims.Role)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return Pair{}, err
	}

	m.log.Info().Str("user", claims.Subject).Msg("refresh token rotated")
	return pair, nil
}

// Revoke marks a refresh token record revoked. Revoking an unknown or
// already-revoked jti is a no-op, not an error.
func (m *Manager) Revoke(jti string) error {
	res := m.db.Model(&models.RefreshToken{}).
		Where("jti = ? AND revoked = ?", jti, false).
		Update("revoked", true)
	return res.Error
}

func (m *Manager) parse(tokenString, secret, wantType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		m.log.Debug().Err(err).Msg("token failed signature or expiry check")
		return nil, ErrUnauthenticated
	}
	if claims.Type != wantType {
		m.log.Debug().Str("type", claims.Type).Str("want", wantType).Msg("token type mismatch")
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
