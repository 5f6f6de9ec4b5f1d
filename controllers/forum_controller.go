package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/utils"
)

// ForumController serves the community forum: threads, comments, and likes.
// All user-supplied bodies pass through the HTML sanitizer before storage.
type ForumController struct {
	db *gorm.DB
}

// NewForumController creates a new controller instance.
func NewForumController(db *gorm.DB) *ForumController {
	return &ForumController{db: db}
}

// List returns forum posts, newest first. An optional limit query parameter
// caps the result.
func (c *ForumController) List(ctx *gin.Context) {
	query := c.db.Preload("Comments").Preload("Likes").Order("created_at desc")
	if raw := ctx.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 100 {
			query = query.Limit(limit)
		}
	}

	var posts []models.ForumPost
	if err := query.Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load posts")
		return
	}
	utils.Success(ctx, gin.H{"posts": posts})
}

// Get returns a single post with its comments.
func (c *ForumController) Get(ctx *gin.Context) {
	post, ok := c.findPost(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

type forumPostRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

// Create publishes a new forum thread.
func (c *ForumController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req forumPostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "title and content are required")
		return
	}

	post := models.ForumPost{
		AuthorID:   userID,
		AuthorName: getUserName(ctx),
		Title:      utils.Sanitize(strings.TrimSpace(req.Title)),
		Content:    utils.Sanitize(req.Content),
	}
	if err := c.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

type forumUpdateRequest struct {
	Title   string `json:"title" binding:"max=255"`
	Content string `json:"content"`
}

// Update edits a post. Only the author may update.
func (c *ForumController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	post, found := c.findPost(ctx)
	if !found {
		return
	}
	if post.AuthorID != userID {
		utils.Error(ctx, http.StatusForbidden, 40370, "not authorized to edit this post")
		return
	}

	var req forumUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid post payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = utils.Sanitize(strings.TrimSpace(req.Title))
	}
	if req.Content != "" {
		updates["content"] = utils.Sanitize(req.Content)
	}
	if len(updates) == 0 {
		utils.Success(ctx, gin.H{"post": post})
		return
	}

	if err := c.db.Model(&post).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// Delete removes a post. The author or an admin may delete.
func (c *ForumController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	post, found := c.findPost(ctx)
	if !found {
		return
	}
	if post.AuthorID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40370, "not authorized to delete this post")
		return
	}

	if err := c.db.Select("Comments", "Likes").Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to delete post")
		return
	}
	utils.Success(ctx, gin.H{"message": "Post removed"})
}

type forumCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Comment adds a reply to a post and returns the refreshed comment list.
func (c *ForumController) Comment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	post, found := c.findPost(ctx)
	if !found {
		return
	}
	var req forumCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40072, "text is required")
		return
	}

	comment := models.ForumComment{
		ForumPostID: post.ID,
		UserID:      userID,
		UserName:    getUserName(ctx),
		Text:        utils.Sanitize(req.Text),
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to add comment")
		return
	}

	comments, err := c.commentsOf(post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load comments")
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// DeleteComment removes the caller's own comment from a post.
func (c *ForumController) DeleteComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	post, found := c.findPost(ctx)
	if !found {
		return
	}
	commentID, err := strconv.ParseUint(ctx.Param("comment_id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40073, "invalid comment id")
		return
	}

	var comment models.ForumComment
	err = c.db.Where("id = ? AND forum_post_id = ?", uint(commentID), post.ID).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40471, "comment does not exist")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load comment")
		return
	}
	if comment.UserID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40370, "not authorized to delete this comment")
		return
	}

	if err := c.db.Delete(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to delete comment")
		return
	}
	comments, err := c.commentsOf(post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load comments")
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// Like records the caller's like on a post; a second like is rejected.
func (c *ForumController) Like(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	post, found := c.findPost(ctx)
	if !found {
		return
	}

	var count int64
	if err := c.db.Model(&models.ForumLike{}).
		Where("forum_post_id = ? AND user_id = ?", post.ID, userID).
		Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to like post")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusBadRequest, 40074, "post already liked")
		return
	}

	if err := c.db.Create(&models.ForumLike{ForumPostID: post.ID, UserID: userID}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to like post")
		return
	}
	c.respondLikes(ctx, post.ID)
}

// Unlike removes the caller's like from a post.
func (c *ForumController) Unlike(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	post, found := c.findPost(ctx)
	if !found {
		return
	}

	res := c.db.Where("forum_post_id = ? AND user_id = ?", post.ID, userID).
		Delete(&models.ForumLike{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to unlike post")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40075, "post has not yet been liked")
		return
	}
	c.respondLikes(ctx, post.ID)
}

func (c *ForumController) findPost(ctx *gin.Context) (models.ForumPost, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40076, "invalid post id")
		return models.ForumPost{}, false
	}

	var post models.ForumPost
	err = c.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at desc")
	}).Preload("Likes").First(&post, uint(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40470, "post not found")
		return models.ForumPost{}, false
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load post")
		return models.ForumPost{}, false
	}
	return post, true
}

func (c *ForumController) commentsOf(postID uint) ([]models.ForumComment, error) {
	var comments []models.ForumComment
	err := c.db.Where("forum_post_id = ?", postID).
		Order("created_at desc").
		Find(&comments).Error
	return comments, err
}

func (c *ForumController) respondLikes(ctx *gin.Context, postID uint) {
	var likes []models.ForumLike
	if err := c.db.Where("forum_post_id = ?", postID).Find(&likes).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to load likes")
		return
	}
	utils.Success(ctx, gin.H{"likes": likes})
}
