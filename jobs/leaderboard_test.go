package jobs

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/models"
)

func newJobsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserProgress{},
		&models.Badge{},
		&models.CompletedChallenge{},
		&models.LeaderboardSnapshot{},
		&models.LeaderboardEntry{},
	))
	return db
}

func seedPlayers(t *testing.T, db *gorm.DB) []models.User {
	t.Helper()
	users := []models.User{
		{Name: "ada", Email: "ada@example.com"},
		{Name: "lin", Email: "lin@example.com"},
	}
	require.NoError(t, db.Create(&users).Error)
	require.NoError(t, db.Create(&[]models.UserProgress{
		{UserID: users[0].ID, Level: 2, TotalPoints: 120},
		{UserID: users[1].ID, Level: 1, TotalPoints: 80},
	}).Error)
	return users
}

func TestSnapshotScopeReplacesPreviousSnapshot(t *testing.T) {
	db := newJobsTestDB(t)
	s := &Scheduler{db: db}
	users := seedPlayers(t, db)

	require.NoError(t, s.snapshotScope(models.LeaderboardGlobal, models.PeriodAllTime, "", ""))
	require.NoError(t, s.snapshotScope(models.LeaderboardGlobal, models.PeriodAllTime, "", ""))

	// The second refresh must replace the first snapshot, not pile on.
	var snapshots []models.LeaderboardSnapshot
	require.NoError(t, db.Preload("Rankings").
		Where("type = ? AND period = ? AND region = ? AND city = ?",
			models.LeaderboardGlobal, models.PeriodAllTime, "", "").
		Find(&snapshots).Error)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "", snapshots[0].Region)

	require.Len(t, snapshots[0].Rankings, 2)
	assert.Equal(t, 1, snapshots[0].Rankings[0].Rank)
	assert.Equal(t, users[0].ID, snapshots[0].Rankings[0].UserID)
	assert.Equal(t, 120, snapshots[0].Rankings[0].Points)

	// Entries of the replaced snapshot are gone too.
	var entries int64
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).Count(&entries).Error)
	assert.EqualValues(t, 2, entries)
}

func TestSnapshotScopeCityKeepsEmptyRegion(t *testing.T) {
	db := newJobsTestDB(t)
	s := &Scheduler{db: db}
	seedPlayers(t, db)

	require.NoError(t, s.snapshotScope(models.LeaderboardCity, models.PeriodAllTime, "", "Dhaka"))
	require.NoError(t, s.snapshotScope(models.LeaderboardCity, models.PeriodAllTime, "", "Dhaka"))

	var snapshots []models.LeaderboardSnapshot
	require.NoError(t, db.
		Where("type = ? AND city = ?", models.LeaderboardCity, "Dhaka").
		Find(&snapshots).Error)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "", snapshots[0].Region)
	assert.Equal(t, "Dhaka", snapshots[0].City)
}
