package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/microblog/middleware"
	"github.com/cppla/microblog/models"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// currentUser loads the authenticated user with its role preloaded.
func currentUser(db *gorm.DB, ctx *gin.Context) (*models.User, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := db.Preload("Role").First(&user, userID).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func parsePagination(pageStr, sizeStr string, defaultSize int) (int, int) {
	page := 1
	pageSize := defaultSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func paginationMeta(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

// isDuplicateEntry detects unique-constraint violations across the MySQL
// driver and the sqlite driver used in tests.
func isDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicated key")
}

func sanitizeUserResponse(user models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"nickname":     user.Nickname,
		"about":        user.About,
		"location":     user.Location,
		"last_seen_at": user.LastSeenAt,
		"created_at":   user.CreatedAt,
	}
}

// sanitizeUserResponseOwner includes fields only the account owner (or an
// admin) may see.
func sanitizeUserResponseOwner(user models.User) gin.H {
	m := sanitizeUserResponse(user)
	m["email"] = user.Email
	m["confirmed"] = user.Confirmed
	m["totp_enabled"] = user.TOTPEnabled
	m["role"] = user.Role.Name
	return m
}
