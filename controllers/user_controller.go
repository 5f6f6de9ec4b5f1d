package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/utils"
)

// UserController covers profile reads, settings, password changes, and the
// admin user management surface.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a new controller instance.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// Profile returns the caller's full profile including achievements, recent
// activity, and the progression record.
func (c *UserController) Profile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	err := c.db.Preload("Achievements").
		Preload("RecentActivity", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Limit(recentActivityKeep)
		}).
		First(&user, userID).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load profile")
		return
	}

	payload := sanitizeUserResponse(user)
	var progress models.UserProgress
	if err := c.db.Preload("Badges").Where("user_id = ?", userID).First(&progress).Error; err == nil {
		payload["progression"] = progress
	}
	utils.Success(ctx, payload)
}

// GetSettings returns the notification and theme preferences. These are not
// persisted yet; the endpoint keeps the client contract.
func (c *UserController) GetSettings(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"notifications": gin.H{"email": true, "push": true},
		"theme":         "light",
	})
}

type updateSettingsRequest struct {
	Name  string `json:"name" binding:"max=64"`
	Email string `json:"email" binding:"max=255"`
}

// UpdateSettings changes the caller's display name and email.
func (c *UserController) UpdateSettings(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req updateSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid settings payload")
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "user not found")
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40021, "invalid email address")
			return
		}
		updates["email"] = strings.ToLower(email)
	}
	if len(updates) > 0 {
		if err := c.db.Model(&user).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to update settings")
			return
		}
	}
	utils.Success(ctx, gin.H{"message": "Settings updated successfully", "user": sanitizeUserResponse(user)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

// ChangePassword verifies the current password and stores a new bcrypt hash.
func (c *UserController) ChangePassword(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req changePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "current and new password are required")
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "user not found")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid current password")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to change password")
		return
	}
	if err := c.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to change password")
		return
	}
	utils.Success(ctx, gin.H{"message": "Password changed successfully"})
}

// ListAll returns every user. Admin only, paginated.
func (c *UserController) ListAll(ctx *gin.Context) {
	page, size := parsePagination(ctx.Query("page"), ctx.Query("size"))

	var total int64
	if err := c.db.Model(&models.User{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load users")
		return
	}

	var users []models.User
	err := c.db.Order("created_at desc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load users")
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, sanitizeUserResponse(u))
	}
	utils.Success(ctx, gin.H{"users": list, "total": total, "page": page, "size": size})
}

// ToggleAdmin flips a user's admin flag. Admin only.
func (c *UserController) ToggleAdmin(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid user id")
		return
	}

	var user models.User
	if err := c.db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load user")
		return
	}

	user.IsAdmin = !user.IsAdmin
	if err := c.db.Model(&user).Update("is_admin", user.IsAdmin).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to update user")
		return
	}
	utils.Success(ctx, gin.H{
		"message": fmt.Sprintf("User %s admin status toggled to %t.", user.Email, user.IsAdmin),
		"user":    sanitizeUserResponse(user),
	})
}

// Delete soft-deletes a user account. Admin only; admins cannot delete
// themselves.
func (c *UserController) Delete(ctx *gin.Context) {
	callerID, _ := getUserID(ctx)
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid user id")
		return
	}
	if uint(id) == callerID {
		utils.Error(ctx, http.StatusBadRequest, 40025, "cannot delete your own account")
		return
	}

	res := c.db.Delete(&models.User{}, uint(id))
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to delete user")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40420, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "User removed"})
}
