package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/microblog/models"
	"github.com/cppla/microblog/utils"
)

// ConfirmedRequired blocks accounts that have not confirmed their email
// address. Must run after AuthRequired so the identity is already in the
// context. Account management routes stay reachable so the user can still
// confirm or resend.
func ConfirmedRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID := ctx.GetUint(ContextUserIDKey)
		if userID == 0 {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
			ctx.Abort()
			return
		}

		var user models.User
		if err := db.Select("id", "confirmed").First(&user, userID).Error; err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
			ctx.Abort()
			return
		}
		if !user.Confirmed {
			utils.Error(ctx, http.StatusForbidden, 40302, "account not confirmed")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
