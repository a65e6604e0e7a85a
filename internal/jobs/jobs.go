// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-server/internal/models"
)

// retention keeps dead token rows around for a while for audit trails.
const retention = 30 * 24 * time.Hour

// StartScheduler launches the daily maintenance job. It runs at 03:30 and
// purges refresh-token rows that are both revoked and long past expiry —
// rows no validation path can ever accept again. Live or merely-expired
// records are never touched; expiry stays a logical check at validation
// time.
func StartScheduler(db *gorm.DB, log zerolog.Logger) *cron.Cron {
	c := cron.New()

	c.AddFunc("30 3 * * *", func() {
		PurgeDeadTokens(db, log)
	})

	c.Start()
	return c
}

// PurgeDeadTokens deletes refresh-token rows that are revoked and whose
// expiry passed more than the retention period ago.
func PurgeDeadTokens(db *gorm.DB, log zerolog.Logger) {
	cutoff := time.Now().Add(-retention)
	res := db.Where("revoked = ? AND expires_at < ?", true, cutoff).Delete(&models.RefreshToken{})
	if res.Error != nil {
		log.Error().Err(res.Error).Msg("refresh token purge failed")
		return
	}
	if res.RowsAffected > 0 {
		log.Info().Int64("rows", res.RowsAffected).Msg("purged dead refresh tokens")
	}
}
