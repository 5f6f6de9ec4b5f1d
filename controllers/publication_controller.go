package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/utils"
)

const publicationsCacheKey = "cache:publications:list"

// PublicationController serves educational articles. Reads are public and
// cached; writes are admin-only and generate URL slugs from titles.
type PublicationController struct {
	db *gorm.DB
}

// NewPublicationController creates a new controller instance.
func NewPublicationController(db *gorm.DB) *PublicationController {
	return &PublicationController{db: db}
}

// List returns all publications, newest first.
func (c *PublicationController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(publicationsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	var publications []models.Publication
	if err := c.db.Order("created_at desc").Find(&publications).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load publications")
		return
	}

	body := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"publications": publications}}
	utils.CacheSetJSON(publicationsCacheKey, body, 10*time.Minute)
	ctx.JSON(http.StatusOK, body)
}

// GetBySlug returns a single publication by its slug.
func (c *PublicationController) GetBySlug(ctx *gin.Context) {
	var publication models.Publication
	err := c.db.Where("slug = ?", ctx.Param("slug")).First(&publication).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40480, "publication not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load publication")
		return
	}
	utils.Success(ctx, gin.H{"publication": publication})
}

type publicationRequest struct {
	Title    string `json:"title" binding:"required,max=255"`
	Author   string `json:"author" binding:"max=128"`
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"image_url" binding:"max=512"`
	Tags     string `json:"tags" binding:"max=512"`
}

// Create publishes a new article. The slug is generated from the title and
// suffixed when taken.
func (c *PublicationController) Create(ctx *gin.Context) {
	var req publicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "title and content are required")
		return
	}

	s, err := c.uniqueSlug(req.Title, 0)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to create publication")
		return
	}

	publication := models.Publication{
		Title:    req.Title,
		Author:   req.Author,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Tags:     req.Tags,
		Slug:     s,
	}
	if err := c.db.Create(&publication).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to create publication")
		return
	}
	utils.InvalidateByPrefix(publicationsCacheKey)
	utils.Success(ctx, gin.H{"publication": publication})
}

// Update edits an existing article. A changed title regenerates the slug.
func (c *PublicationController) Update(ctx *gin.Context) {
	publication, ok := c.findByRef(ctx)
	if !ok {
		return
	}

	var req struct {
		Title    string `json:"title" binding:"max=255"`
		Author   string `json:"author" binding:"max=128"`
		Content  string `json:"content"`
		ImageURL string `json:"image_url" binding:"max=512"`
		Tags     string `json:"tags" binding:"max=512"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid publication payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" && req.Title != publication.Title {
		updates["title"] = req.Title
		s, err := c.uniqueSlug(req.Title, publication.ID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to update publication")
			return
		}
		updates["slug"] = s
	}
	if req.Author != "" {
		updates["author"] = req.Author
	}
	if req.Content != "" {
		updates["content"] = req.Content
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.Tags != "" {
		updates["tags"] = req.Tags
	}
	if len(updates) > 0 {
		if err := c.db.Model(&publication).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to update publication")
			return
		}
		utils.InvalidateByPrefix(publicationsCacheKey)
	}
	utils.Success(ctx, gin.H{"publication": publication})
}

// Delete removes an article.
func (c *PublicationController) Delete(ctx *gin.Context) {
	publication, ok := c.findByRef(ctx)
	if !ok {
		return
	}

	if err := c.db.Delete(&publication).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to delete publication")
		return
	}
	utils.InvalidateByPrefix(publicationsCacheKey)
	utils.Success(ctx, gin.H{"message": "Publication removed"})
}

// findByRef resolves the path parameter as a numeric id first and a slug
// otherwise, so admin tooling can address articles either way.
func (c *PublicationController) findByRef(ctx *gin.Context) (models.Publication, bool) {
	ref := ctx.Param("slug")

	var publication models.Publication
	var err error
	if id, perr := strconv.ParseUint(ref, 10, 32); perr == nil {
		err = c.db.First(&publication, uint(id)).Error
	} else {
		err = c.db.Where("slug = ?", ref).First(&publication).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40480, "publication not found")
		return models.Publication{}, false
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load publication")
		return models.Publication{}, false
	}
	return publication, true
}

// uniqueSlug slugifies the title and appends a counter until the slug is free.
// excludeID skips the publication being updated.
func (c *PublicationController) uniqueSlug(title string, excludeID uint) (string, error) {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		q := c.db.Model(&models.Publication{}).Where("slug = ?", candidate)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
