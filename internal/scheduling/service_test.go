package scheduling

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hospital-server/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return NewService(db, zerolog.Nop()), db
}

// seedDoctorMondays gives the doctor availability Mon 09:00-17:00.
func seedDoctorMondays(t *testing.T, db *gorm.DB, doctorID string) {
	t.Helper()
	w := models.DoctorAvailability{DoctorID: doctorID, DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 17 * 60}
	require.NoError(t, db.Create(&w).Error)
}

func TestBook_HappyPath(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")

	appt, err := svc.Book("pat-1", "doc-1", nil, monday(9, 30))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.NotEmpty(t, appt.ID)

	var count int64
	require.NoError(t, db.Model(&models.Appointment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBook_DoctorUnavailable(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")

	_, err := svc.Book("pat-1", "doc-1", nil, monday(18, 0))
	assert.ErrorIs(t, err, ErrDoctorUnavailable)

	// A rejected booking must leave no record behind.
	var count int64
	require.NoError(t, db.Model(&models.Appointment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestBook_SlotConflictScenario(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")

	// 09:30 books fine.
	_, err := svc.Book("pat-1", "doc-1", nil, monday(9, 30))
	require.NoError(t, err)

	// 09:45 is 15 minutes away: doctor slot conflict.
	_, err = svc.Book("pat-2", "doc-1", nil, monday(9, 45))
	assert.ErrorIs(t, err, ErrDoctorSlotConflict)

	// 10:30 is 60 minutes away: fine.
	_, err = svc.Book("pat-2", "doc-1", nil, monday(10, 30))
	require.NoError(t, err)
}

func TestBook_PatientSlotConflictAcrossDoctors(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")
	seedDoctorMondays(t, db, "doc-2")

	_, err := svc.Book("pat-1", "doc-1", nil, monday(9, 30))
	require.NoError(t, err)

	// Same patient, different doctor, 20 minutes later.
	_, err = svc.Book("pat-1", "doc-2", nil, monday(9, 50))
	assert.ErrorIs(t, err, ErrPatientSlotConflict)
}

func TestUpdate_RescheduleToOwnTimeIsNoOp(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")

	appt, err := svc.Book("pat-1", "doc-1", nil, monday(9, 30))
	require.NoError(t, err)

	at := monday(9, 30)
	got, err := svc.Update(appt.ID, UpdateInput{NewTime: &at}, Caller{Role: models.RolePatient, ProfileID: "pat-1"})
	require.NoError(t, err)
	assert.True(t, got.ScheduledTime.Equal(at))
}

func TestUpdate_RescheduleConflictLeavesRecordUnmodified(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")

	_, err := svc.Book("pat-1", "doc-1", nil, monday(9, 30))
	require.NoError(t, err)
	second, err := svc.Book("pat-2", "doc-1", nil, monday(11, 0))
	require.NoError(t, err)

	at := monday(9, 45)
	_, err = svc.Update(second.ID, UpdateInput{NewTime: &at}, Caller{Role: models.RolePatient, ProfileID: "pat-2"})
	assert.ErrorIs(t, err, ErrDoctorSlotConflict)

	var reread models.Appointment
	require.NoError(t, db.First(&reread, "id = ?", second.ID).Error)
	assert.True(t, reread.ScheduledTime.Equal(monday(11, 0)), "failed update must not change scheduled_time")
}

func TestUpdate_PatientStatusRules(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")

	appt, err := svc.Book("pat-1", "doc-1", nil, monday(9, 30))
	require.NoError(t, err)

	approved := models.StatusApproved
	_, err = svc.Update(appt.ID, UpdateInput{NewStatus: &approved}, Caller{Role: models.RolePatient, ProfileID: "pat-1"})
	assert.ErrorIs(t, err, ErrInvalidStatusChange)

	cancelled := models.StatusCancelled
	got, err := svc.Update(appt.ID, UpdateInput{NewStatus: &cancelled}, Caller{Role: models.RolePatient, ProfileID: "pat-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	// Cancelled is terminal, even for an admin.
	pending := models.StatusPending
	_, err = svc.Update(appt.ID, UpdateInput{NewStatus: &pending}, Caller{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidStatusChange)
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")

	appt, err := svc.Book("pat-1", "doc-1", nil, monday(9, 30))
	require.NoError(t, err)

	cancelled := models.StatusCancelled
	_, err = svc.Update(appt.ID, UpdateInput{NewStatus: &cancelled}, Caller{Role: models.RolePatient, ProfileID: "pat-9"})
	assert.ErrorIs(t, err, ErrForbidden)

	approved := models.StatusApproved
	_, err = svc.Update(appt.ID, UpdateInput{NewStatus: &approved}, Caller{Role: models.RoleDoctor, ProfileID: "doc-9"})
	assert.ErrorIs(t, err, ErrForbidden)

	// The owning doctor approves and attaches a note.
	note := "bring previous scans"
	got, err := svc.Update(appt.ID, UpdateInput{NewStatus: &approved, NewNotes: &note}, Caller{Role: models.RoleDoctor, ProfileID: "doc-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.Notes)
	assert.Equal(t, note, *got.Notes)
}

func TestReassign_BypassesConflictValidation(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")
	seedDoctorMondays(t, db, "doc-2")

	// doc-2 already has an appointment at 09:30.
	_, err := svc.Book("pat-2", "doc-2", nil, monday(9, 30))
	require.NoError(t, err)

	appt, err := svc.Book("pat-1", "doc-1", nil, monday(9, 40))
	require.NoError(t, err)

	// Reassigning onto doc-2 collides with the existing 09:30 booking but
	// succeeds anyway: administrative correction skips validation.
	hosp := "hosp-1"
	got, err := svc.Reassign(appt.ID, "doc-2", &hosp)
	require.NoError(t, err)
	assert.Equal(t, "doc-2", got.DoctorID)
	require.NotNil(t, got.HospitalID)
	assert.Equal(t, "hosp-1", *got.HospitalID)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	cancelled := models.StatusCancelled
	_, err := svc.Update("missing-id", UpdateInput{NewStatus: &cancelled}, Caller{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBook_BoundaryMinutes(t *testing.T) {
	svc, db := newTestService(t)
	seedDoctorMondays(t, db, "doc-1")

	_, err := svc.Book("pat-1", "doc-1", nil, monday(10, 0))
	require.NoError(t, err)

	// 29 minutes later still conflicts.
	_, err = svc.Book("pat-2", "doc-1", nil, monday(10, 29))
	assert.ErrorIs(t, err, ErrDoctorSlotConflict)

	// 30 minutes later is clear.
	_, err = svc.Book("pat-2", "doc-1", nil, monday(10, 30))
	require.NoError(t, err)
}
