package token

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hospital-server/internal/config"
	"hospital-server/internal/models"
)

func newTestManager(t *testing.T) (*Manager, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		JWTSecret:                 "access-secret-for-tests",
		JWTRefreshSecret:          "refresh-secret-for-tests",
		JWTExpirationMinutes:      30,
		JWTRefreshExpirationHours: 168,
	}
	return NewManager(db, cfg, zerolog.Nop()), db
}

func TestIssue_PersistsRecordAndValidates(t *testing.T) {
	m, db := newTestManager(t)

	pair, err := m.Issue("user-1", models.RolePatient)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := m.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, models.RolePatient, claims.Role)

	claims, err = m.ValidateRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	var record models.RefreshToken
	require.NoError(t, db.First(&record, "jti = ?", claims.ID).Error)
	assert.Equal(t, "user-1", record.UserID)
	assert.False(t, record.Revoked)
}

func TestValidate_TokenTypesAreNotInterchangeable(t *testing.T) {
	m, _ := newTestManager(t)
	pair, err := m.Issue("user-1", models.RoleDoctor)
	require.NoError(t, err)

	// A refresh token is signed with a different secret and typed refresh;
	// it must never pass as an access token, and vice versa.
	_, err = m.ValidateAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = m.ValidateRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestValidate_TamperedToken(t *testing.T) {
	m, _ := newTestManager(t)
	pair, err := m.Issue("user-1", models.RolePatient)
	require.NoError(t, err)

	tampered := pair.RefreshToken[:len(pair.RefreshToken)-2] + "xx"
	_, err = m.ValidateRefresh(tampered)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = m.ValidateRefresh("not-a-jwt-at-all")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRotate_OldTokenDiesNewTokenLives(t *testing.T) {
	m, _ := newTestManager(t)
	pair, err := m.Issue("user-1", models.RolePatient)
	require.NoError(t, err)

	rotated, err := m.Rotate(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// Old token is revoked: both validation and a second rotation fail.
	_, err = m.ValidateRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = m.Rotate(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// New token validates, rotates once, then dies in turn.
	_, err = m.ValidateRefresh(rotated.RefreshToken)
	require.NoError(t, err)
	_, err = m.Rotate(rotated.RefreshToken)
	require.NoError(t, err)
	_, err = m.ValidateRefresh(rotated.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRotate_ExpiredRecordRejected(t *testing.T) {
	m, db := newTestManager(t)
	pair, err := m.Issue("user-1", models.RolePatient)
	require.NoError(t, err)

	claims, err := m.ValidateRefresh(pair.RefreshToken)
	require.NoError(t, err)

	// Expire the record server-side; the signed token itself is still valid.
	require.NoError(t, db.Model(&models.RefreshToken{}).
		Where("jti = ?", claims.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, err = m.ValidateRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = m.Rotate(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRotate_PurgedRecordIsReplay(t *testing.T) {
	m, db := newTestManager(t)
	pair, err := m.Issue("user-1", models.RolePatient)
	require.NoError(t, err)

	require.NoError(t, db.Where("user_id = ?", "user-1").Delete(&models.RefreshToken{}).Error)

	// Signed token with no backing record is treated as a replay.
	_, err = m.Rotate(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRevoke_Idempotent(t *testing.T) {
	m, db := newTestManager(t)
	pair, err := m.Issue("user-1", models.RolePatient)
	require.NoError(t, err)
	claims, err := m.ValidateRefresh(pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(claims.ID))
	_, err = m.ValidateRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Revoking again, or revoking a jti that never existed, is a quiet no-op.
	require.NoError(t, m.Revoke(claims.ID))
	require.NoError(t, m.Revoke("no-such-jti"))

	var count int64
	require.NoError(t, db.Model(&models.RefreshToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "revoking an unknown jti must not create a record")
}

func TestRevoke_NeverUnrevokes(t *testing.T) {
	m, db := newTestManager(t)
	pair, err := m.Issue("user-1", models.RolePatient)
	require.NoError(t, err)
	claims, err := m.ValidateRefresh(pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(claims.ID))

	var record models.RefreshToken
	require.NoError(t, db.First(&record, "jti = ?", claims.ID).Error)
	assert.True(t, record.Revoked)
}

func TestRotate_MultipleLiveTokensPerUser(t *testing.T) {
	m, _ := newTestManager(t)

	// No single-session policy: two logins coexist and rotate independently.
	a, err := m.Issue("user-1", models.RolePatient)
	require.NoError(t, err)
	b, err := m.Issue("user-1", models.RolePatient)
	require.NoError(t, err)

	_, err = m.Rotate(a.RefreshToken)
	require.NoError(t, err)
	_, err = m.ValidateRefresh(b.RefreshToken)
	require.NoError(t, err)
}
