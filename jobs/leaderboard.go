package jobs

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/utils"
)

const snapshotSize = 100

// RefreshLeaderboards regenerates ranking snapshots for every period of the
// global board and for each region and city that has players. Stale snapshots
// for the same scope are replaced in the same transaction.
func (s *Scheduler) RefreshLeaderboards() {
	started := time.Now()

	for _, period := range []string{
		models.PeriodDaily, models.PeriodWeekly, models.PeriodMonthly, models.PeriodAllTime,
	} {
		if err := s.snapshotScope(models.LeaderboardGlobal, period, "", ""); err != nil {
			utils.Sugar.Errorw("leaderboard snapshot failed",
				"type", models.LeaderboardGlobal, "period", period, "error", err)
		}
	}

	var regions []string
	if err := s.db.Model(&models.UserProgress{}).
		Distinct("region").
		Where("region <> ''").
		Pluck("region", &regions).Error; err == nil {
		for _, region := range regions {
			if err := s.snapshotScope(models.LeaderboardRegional, models.PeriodAllTime, region, ""); err != nil {
				utils.Sugar.Errorw("leaderboard snapshot failed",
					"type", models.LeaderboardRegional, "region", region, "error", err)
			}
		}
	}

	var cities []string
	if err := s.db.Model(&models.UserProgress{}).
		Distinct("city").
		Where("city <> ''").
		Pluck("city", &cities).Error; err == nil {
		for _, city := range cities {
			if err := s.snapshotScope(models.LeaderboardCity, models.PeriodAllTime, "", city); err != nil {
				utils.Sugar.Errorw("leaderboard snapshot failed",
					"type", models.LeaderboardCity, "city", city, "error", err)
			}
		}
	}

	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.Sugar.Infow("leaderboard snapshots refreshed", "took", time.Since(started).String())
}

// snapshotScope builds one ranking snapshot and swaps it in for the previous
// one of the same scope.
func (s *Scheduler) snapshotScope(boardType, period, region, city string) error {
	query := s.db.Preload("Badges").Preload("CompletedChallenges")
	if start := periodCutoff(period, time.Now()); !start.IsZero() {
		query = query.Where("last_updated >= ?", start)
	}
	if region != "" {
		query = query.Where("region = ?", region)
	}
	if city != "" {
		query = query.Where("city = ?", city)
	}

	var records []models.UserProgress
	if err := query.Order("total_points desc").Limit(snapshotSize).Find(&records).Error; err != nil {
		return err
	}

	userIDs := make([]uint, 0, len(records))
	for _, r := range records {
		userIDs = append(userIDs, r.UserID)
	}
	users := map[uint]models.User{}
	if len(userIDs) > 0 {
		var list []models.User
		if err := s.db.Select("id", "name", "avatar_url").Find(&list, utils.UniqueUint(userIDs)).Error; err != nil {
			return err
		}
		for _, u := range list {
			users[u.ID] = u
		}
	}

	snapshot := models.LeaderboardSnapshot{
		Type:        boardType,
		Period:      period,
		Region:      region,
		City:        city,
		GeneratedAt: time.Now(),
	}
	for i, r := range records {
		u := users[r.UserID]
		snapshot.Rankings = append(snapshot.Rankings, models.LeaderboardEntry{
			Rank:                i + 1,
			UserID:              r.UserID,
			Username:            u.Name,
			Avatar:              u.AvatarURL,
			Points:              r.TotalPoints,
			Level:               r.Level,
			CarbonSaved:         float64(r.TotalPoints) / 10,
			ChallengesCompleted: len(r.CompletedChallenges),
			Streak:              r.StreakCurrent,
		})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var old []models.LeaderboardSnapshot
		if err := tx.Where("type = ? AND period = ? AND region = ? AND city = ?",
			boardType, period, region, city).Find(&old).Error; err != nil {
			return err
		}
		for _, o := range old {
			if err := tx.Select("Rankings").Delete(&o).Error; err != nil {
				return err
			}
		}
		return tx.Create(&snapshot).Error
	})
}

// periodCutoff maps a snapshot period to the earliest last_updated it counts.
func periodCutoff(period string, now time.Time) time.Time {
	switch period {
	case models.PeriodDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case models.PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case models.PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// SettleEcoBattles closes battles whose end date has passed. Both participant
// rows of a battle settle inside one transaction: points are frozen from each
// side's progress total gained during the battle window and the higher score
// wins. A draw leaves WinnerID unset.
func (s *Scheduler) SettleEcoBattles() {
	var expired []models.EcoBattle
	if err := s.db.Where("status = ? AND end_date < ?", models.BattleActive, time.Now()).
		Find(&expired).Error; err != nil {
		utils.Sugar.Errorw("eco-battle settlement query failed", "error", err)
		return
	}

	seen := map[string]bool{}
	for _, b := range expired {
		if seen[b.BattleID] {
			continue
		}
		seen[b.BattleID] = true
		if err := s.settleBattle(b.BattleID); err != nil {
			utils.Sugar.Errorw("eco-battle settlement failed", "battle_id", b.BattleID, "error", err)
		}
	}

	if len(seen) > 0 {
		utils.Sugar.Infow("eco-battles settled", "count", len(seen))
	}
}

func (s *Scheduler) settleBattle(battleID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var rows []models.EcoBattle
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("battle_id = ? AND status = ?", battleID, models.BattleActive).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		// Score each side by points earned during the battle window.
		scores := map[uint]int{}
		owners := map[uint]uint{} // progress id -> user id
		for _, r := range rows {
			var progress models.UserProgress
			if err := tx.First(&progress, r.UserProgressID).Error; err != nil {
				return err
			}
			owners[r.UserProgressID] = progress.UserID

			var earned int64
			if err := tx.Model(&models.CompletedChallenge{}).
				Where("user_progress_id = ? AND completed_at BETWEEN ? AND ?",
					r.UserProgressID, r.StartDate, r.EndDate).
				Select("COALESCE(SUM(points_earned),0)").
				Scan(&earned).Error; err != nil {
				return err
			}
			scores[progress.UserID] = int(earned)
		}

		var winnerID *uint
		if len(rows) == 2 {
			a, b := owners[rows[0].UserProgressID], owners[rows[1].UserProgressID]
			switch {
			case scores[a] > scores[b]:
				winnerID = &a
			case scores[b] > scores[a]:
				winnerID = &b
			}
		}

		now := time.Now()
		for _, r := range rows {
			me := owners[r.UserProgressID]
			updates := map[string]interface{}{
				"status":          models.BattleCompleted,
				"my_points":       scores[me],
				"opponent_points": scores[r.OpponentID],
				"winner_id":       winnerID,
				"settled_at":      now,
			}
			if err := tx.Model(&models.EcoBattle{}).Where("id = ?", r.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
