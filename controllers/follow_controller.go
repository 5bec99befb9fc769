package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/microblog/config"
	"github.com/cppla/microblog/models"
	"github.com/cppla/microblog/utils"
)

// FollowController manages the directed follower graph.
type FollowController struct {
	db *gorm.DB
}

// NewFollowController creates a new controller instance.
func NewFollowController(db *gorm.DB) *FollowController {
	return &FollowController{db: db}
}

func (f *FollowController) targetByUsername(ctx *gin.Context) (*models.User, bool) {
	uname := strings.TrimSpace(ctx.Param("username"))
	var user models.User
	if err := f.db.Where("username = ?", uname).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to get user")
		return nil, false
	}
	return &user, true
}

// Follow creates the edge caller→target. Requires the FOLLOW permission.
// The unique pair index makes concurrent duplicate requests converge on one
// edge; re-following is a no-op success.
func (f *FollowController) Follow(ctx *gin.Context) {
	caller, ok := currentUser(f.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !caller.Can(models.PermFollow) {
		utils.Error(ctx, http.StatusForbidden, 40301, "permission denied")
		return
	}

	target, ok := f.targetByUsername(ctx)
	if !ok {
		return
	}
	if target.ID == caller.ID {
		utils.Error(ctx, http.StatusBadRequest, 40030, "cannot follow yourself")
		return
	}

	edge := models.Follow{FollowerID: caller.ID, FollowedID: target.ID}
	if err := f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
		// some drivers surface the duplicate instead of honoring DO NOTHING
		if !isDuplicateEntry(err) {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to follow")
			return
		}
	}

	utils.Success(ctx, gin.H{"message": "followed", "following": true})
}

// Unfollow removes the edge caller→target; no-op when absent.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	caller, ok := currentUser(f.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	target, ok := f.targetByUsername(ctx)
	if !ok {
		return
	}

	if err := f.db.Where("follower_id = ? AND followed_id = ?", caller.ID, target.ID).
		Delete(&models.Follow{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to unfollow")
		return
	}

	utils.Success(ctx, gin.H{"message": "unfollowed", "following": false})
}

// IsFollowing reports both directions of the edge between caller and target:
// whether the caller follows the target and whether the target follows back.
func (f *FollowController) IsFollowing(ctx *gin.Context) {
	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	target, ok := f.targetByUsername(ctx)
	if !ok {
		return
	}

	var forward, reverse int64
	if err := f.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", callerID, target.ID).
		Count(&forward).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to check edge")
		return
	}
	if err := f.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", target.ID, callerID).
		Count(&reverse).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to check edge")
		return
	}

	utils.Success(ctx, gin.H{"following": forward > 0, "followed_by": reverse > 0})
}

// ListFollowing returns the users the target follows, newest edge first,
// excluding any self edge.
func (f *FollowController) ListFollowing(ctx *gin.Context) {
	target, ok := f.targetByUsername(ctx)
	if !ok {
		return
	}
	f.listEdges(ctx, "follower_id", "followed_id", target.ID)
}

// ListFollowers returns the users following the target, newest edge first,
// excluding any self edge.
func (f *FollowController) ListFollowers(ctx *gin.Context) {
	target, ok := f.targetByUsername(ctx)
	if !ok {
		return
	}
	f.listEdges(ctx, "followed_id", "follower_id", target.ID)
}

// listEdges pages over follow edges anchored on anchorCol = userID and
// resolves the user on the other end of each edge.
func (f *FollowController) listEdges(ctx *gin.Context, anchorCol, otherCol string, userID uint) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), config.Get().FollowsPerPage)

	base := f.db.Model(&models.Follow{}).
		Where(anchorCol+" = ? AND "+otherCol+" <> ?", userID, userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to count edges")
		return
	}

	var edges []models.Follow
	if err := base.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&edges).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to retrieve edges")
		return
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		if otherCol == "followed_id" {
			ids = append(ids, e.FollowedID)
		} else {
			ids = append(ids, e.FollowerID)
		}
	}

	usersByID := map[uint]models.User{}
	if len(ids) > 0 {
		var users []models.User
		if err := f.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to retrieve users")
			return
		}
		for _, u := range users {
			usersByID[u.ID] = u
		}
	}

	items := make([]gin.H, 0, len(edges))
	for _, e := range edges {
		id := e.FollowerID
		if otherCol == "followed_id" {
			id = e.FollowedID
		}
		u, found := usersByID[id]
		if !found {
			continue
		}
		item := sanitizeUserResponse(u)
		item["since"] = e.CreatedAt
		items = append(items, item)
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
