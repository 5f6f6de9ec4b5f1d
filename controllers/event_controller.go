package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/utils"
)

// EventController serves community event announcements.
type EventController struct {
	db *gorm.DB
}

// NewEventController creates a new controller instance.
func NewEventController(db *gorm.DB) *EventController {
	return &EventController{db: db}
}

// List returns all events, most recent date first.
func (c *EventController) List(ctx *gin.Context) {
	var events []models.Event
	if err := c.db.Order("date desc").Find(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to load events")
		return
	}
	utils.Success(ctx, gin.H{"events": events})
}

type eventRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Date        time.Time `json:"date" binding:"required"`
	Time        string    `json:"time" binding:"max=32"`
	Location    string    `json:"location" binding:"max=255"`
	Description string    `json:"description"`
	Image       string    `json:"image" binding:"max=512"`
}

// Create announces a new event. Any authenticated user may create one.
func (c *EventController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req eventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "title and date are required")
		return
	}

	event := models.Event{
		UserID:      userID,
		Title:       req.Title,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		Description: req.Description,
		Image:       req.Image,
	}
	if err := c.db.Create(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to create event")
		return
	}
	utils.Success(ctx, gin.H{"event": event})
}

// Update edits an event. Admin only.
func (c *EventController) Update(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid event id")
		return
	}

	var event models.Event
	if err := c.db.First(&event, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40490, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to load event")
		return
	}

	var req struct {
		Title       string     `json:"title" binding:"max=255"`
		Date        *time.Time `json:"date"`
		Time        string     `json:"time" binding:"max=32"`
		Location    string     `json:"location" binding:"max=255"`
		Description string     `json:"description"`
		Image       string     `json:"image" binding:"max=512"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40092, "invalid event payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}
	if req.Time != "" {
		updates["time"] = req.Time
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Image != "" {
		updates["image"] = req.Image
	}
	if len(updates) > 0 {
		if err := c.db.Model(&event).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to update event")
			return
		}
	}
	utils.Success(ctx, gin.H{"event": event})
}

// Delete removes an event. Admin only.
func (c *EventController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid event id")
		return
	}

	res := c.db.Delete(&models.Event{}, uint(id))
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to delete event")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40490, "event not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "Event removed"})
}
