package main

import (
	"github.com/SadmanRahman12/GreenZen/config"
	"github.com/SadmanRahman12/GreenZen/jobs"
	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/routes"
	"github.com/SadmanRahman12/GreenZen/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Achievement{},
		&models.ActivityRecord{},
		&models.Habit{},
		&models.Challenge{},
		&models.UserProgress{},
		&models.Badge{},
		&models.CompletedChallenge{},
		&models.DailyChallenge{},
		&models.Friend{},
		&models.EcoBattle{},
		&models.Campaign{},
		&models.CampaignParticipant{},
		&models.CampaignCompletion{},
		&models.ForumPost{},
		&models.ForumComment{},
		&models.ForumLike{},
		&models.Publication{},
		&models.Event{},
		&models.LeaderboardSnapshot{},
		&models.LeaderboardEntry{},
	)

	r := routes.SetupRouter(db)

	scheduler, err := jobs.NewScheduler(db)
	if err != nil {
		utils.Sugar.Fatalf("scheduler init failed: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		utils.Sugar.Fatalf("scheduler start failed: %v", err)
	}
	defer scheduler.Stop()

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
