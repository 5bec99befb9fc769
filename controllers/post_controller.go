package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/microblog/config"
	"github.com/cppla/microblog/models"
	"github.com/cppla/microblog/utils"
)

// PostController manages posts and comments.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// CreatePost creates a post from raw markdown. Requires the WRITE permission.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Body   string `json:"body" binding:"required"`
		Repost bool   `json:"repost"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "body cannot be empty")
		return
	}

	user, ok := currentUser(p.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !user.Can(models.PermWrite) {
		utils.Error(ctx, http.StatusForbidden, 40301, "permission denied")
		return
	}

	post := models.Post{UserID: user.ID, Repost: req.Repost}
	post.SetBody(req.Body)

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"post": post})
}

// UpdatePost edits the raw body, re-deriving the HTML rendering. Allowed for
// the author or MODERATE holders.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	user, ok := currentUser(p.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load post")
		return
	}
	if post.UserID != user.ID && !user.Can(models.PermModerate) {
		utils.Error(ctx, http.StatusForbidden, 40301, "permission denied")
		return
	}

	post.SetBody(req.Body)
	if err := p.db.Model(&post).Updates(map[string]interface{}{
		"body":      post.Body,
		"body_html": post.BodyHTML,
	}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to update post")
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post and its comments in one transaction. Allowed for
// the author or MODERATE holders.
func (p *PostController) DeletePost(ctx *gin.Context) {
	user, ok := currentUser(p.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load post")
		return
	}
	if post.UserID != user.ID && !user.Can(models.PermModerate) {
		utils.Error(ctx, http.StatusForbidden, 40301, "permission denied")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to delete post")
		return
	}

	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// GetPost returns one post with its author.
func (p *PostController) GetPost(ctx *gin.Context) {
	var post models.Post
	if err := p.db.Preload("User").First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// ListPosts returns all posts newest first (the explore page).
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), config.Get().PostsPerPage)

	var total int64
	if err := p.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := p.db.Preload("User").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to retrieve posts")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// Feed returns the union of the caller's own posts and posts by everyone the
// caller follows, newest first. The disjunction cannot double-count a post
// even if a self edge or duplicate edge ever existed.
func (p *PostController) Feed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), config.Get().PostsPerPage)

	followed := p.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
	query := p.db.Model(&models.Post{}).
		Where("user_id = ? OR user_id IN (?)", userID, followed)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := query.Preload("User").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to retrieve posts")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// ListUserPosts returns one user's posts newest first.
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	uname := strings.TrimSpace(ctx.Param("username"))
	var user models.User
	if err := p.db.Where("username = ?", uname).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to get user")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), config.Get().PostsPerPage)

	var total int64
	if err := p.db.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := p.db.Preload("User").Where("user_id = ?", user.ID).Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to retrieve posts")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// CreateComment replies to a post. Requires the COMMENT permission.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "body cannot be empty")
		return
	}

	user, ok := currentUser(p.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !user.Can(models.PermComment) {
		utils.Error(ctx, http.StatusForbidden, 40301, "permission denied")
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load post")
		return
	}

	comment := models.Comment{PostID: post.ID, UserID: user.ID}
	comment.SetBody(req.Body)

	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to create comment")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"comment": comment})
}

// ListComments returns a post's comments newest first.
func (p *PostController) ListComments(ctx *gin.Context) {
	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load post")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), config.Get().CommentsPerPage)

	var total int64
	if err := p.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := p.db.Preload("User").Where("post_id = ?", post.ID).Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to retrieve comments")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      comments,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// DeleteComment removes one comment. Allowed for the comment author, the
// post author, or MODERATE holders.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	user, ok := currentUser(p.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var comment models.Comment
	if err := p.db.First(&comment, ctx.Param("commentId")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40421, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load comment")
		return
	}

	var post models.Post
	if err := p.db.First(&post, comment.PostID).Error; err != nil && err != gorm.ErrRecordNotFound {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load post")
		return
	}

	if comment.UserID != user.ID && post.UserID != user.ID && !user.Can(models.PermModerate) {
		utils.Error(ctx, http.StatusForbidden, 40301, "permission denied")
		return
	}

	if err := p.db.Delete(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
