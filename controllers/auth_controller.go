package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/microblog/config"
	"github.com/cppla/microblog/models"
	"github.com/cppla/microblog/utils"
)

// AuthController handles account lifecycle endpoints: signup and confirmation,
// login with optional TOTP, password and email flows, 2FA management and
// account deletion.
type AuthController struct {
	db     *gorm.DB
	mailer utils.Mailer
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, mailer utils.Mailer) *AuthController {
	return &AuthController{db: db, mailer: mailer}
}

func tokenTTL() time.Duration {
	return time.Duration(config.Get().TokenTTLSec) * time.Second
}

// Register creates an unconfirmed account and dispatches the confirmation
// mail. The signup email matching the configured admin email yields the
// Administrator role (handled by the model hook).
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required,min=2,max=64"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6,max=64"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if !validUsername(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may contain letters, digits and '-' only")
		return
	}

	user := models.User{Username: req.Username, Email: req.Email}
	if err := user.SetPassword(req.Password); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	if err := a.db.Create(&user).Error; err != nil {
		if isDuplicateEntry(err) {
			utils.Error(ctx, http.StatusConflict, 40901, "username or email already taken")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	a.sendConfirmation(user)

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "a confirmation email has been sent to your inbox", gin.H{
		"token": token,
		"user":  sanitizeUserResponseOwner(user),
	})
}

func (a *AuthController) sendConfirmation(user models.User) {
	confirmToken, err := utils.IssuePurposeToken(utils.PurposeConfirm, user.ID, "", tokenTTL())
	if err != nil {
		utils.Sugar.Errorf("issue confirm token for user %d failed: %v", user.ID, err)
		return
	}
	text := fmt.Sprintf("Hi %s,\n\nConfirm your account with this token:\n\n%s\n\nIt expires in %d minutes.",
		user.Username, confirmToken, config.Get().TokenTTLSec/60)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Confirm your account with this token:</p><p><b>%s</b></p><p>It expires in %d minutes.</p>",
		user.Username, confirmToken, config.Get().TokenTTLSec/60)
	utils.SendAsync(a.mailer, user.Email, "Confirm your account", text, html)
}

// Login verifies credentials (username or email), requires a valid TOTP code
// in the same request when 2FA is enabled, and issues a session JWT. Unknown
// user, wrong password and failed 2FA are indistinguishable to the caller.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		User     string `json:"user" binding:"required"`
		Password string `json:"password" binding:"required"`
		TOTPCode string `json:"totp_code"`
		Next     string `json:"next"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	err := a.db.Where("username = ?", req.User).Or("email = ?", req.User).First(&user).Error
	if err != nil || !user.VerifyPassword(req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
		return
	}

	// a bad or missing code is reported exactly like a bad password so the
	// response never reveals that the password stage passed
	if user.TOTPEnabled {
		if !utils.VerifyTOTP(user.TOTPSecret, strings.TrimSpace(req.TOTPCode)) {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
			return
		}
	}

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	redirect := req.Next
	if redirect == "" {
		redirect = "/"
	}

	utils.Success(ctx, gin.H{
		"token":    token,
		"user":     sanitizeUserResponseOwner(user),
		"redirect": redirect,
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(72 * time.Hour)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Confirm marks the account confirmed when the token verifies and belongs to
// the session user. Already-confirmed accounts short-circuit to success.
func (a *AuthController) Confirm(ctx *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}

	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if user.Confirmed {
		utils.Success(ctx, gin.H{"message": "account already confirmed"})
		return
	}

	claims, err := utils.VerifyPurposeToken(req.Token, utils.PurposeConfirm)
	if err != nil || claims.UserID != user.ID {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid or expired token")
		return
	}

	if err := a.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(user).Update("confirmed", true).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to confirm account")
		return
	}

	utils.Success(ctx, gin.H{"message": "account confirmed"})
}

// ResendConfirm issues a fresh confirmation token. A per-address cooldown
// protects the mail relay from duplicate clicks.
func (a *AuthController) ResendConfirm(ctx *gin.Context) {
	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if user.Confirmed {
		utils.Success(ctx, gin.H{"message": "account already confirmed"})
		return
	}
	if !utils.EmailCooldownTrySet(user.Email, 60*time.Second) {
		utils.Error(ctx, http.StatusTooManyRequests, 42901, "confirmation email was sent recently, try again later")
		return
	}

	a.sendConfirmation(*user)
	utils.Success(ctx, gin.H{"message": "a confirmation email has been sent to your inbox"})
}

// ChangePassword replaces the password after re-verifying the current one.
func (a *AuthController) ChangePassword(ctx *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
		return
	}

	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !user.VerifyPassword(req.OldPassword) {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "invalid credentials")
		return
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}
	if err := a.db.Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to update password")
		return
	}

	utils.Success(ctx, gin.H{"message": "password has been updated"})
}

// RequestPasswordReset responds identically whether or not the address is
// registered; only the mail dispatch differs.
func (a *AuthController) RequestPasswordReset(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err == nil {
		resetToken, err := utils.IssuePurposeToken(utils.PurposePasswordReset, user.ID, "", tokenTTL())
		if err != nil {
			utils.Sugar.Errorf("issue reset token for user %d failed: %v", user.ID, err)
		} else {
			text := fmt.Sprintf("Hi %s,\n\nReset your password with this token:\n\n%s\n\nIt expires in %d minutes. If you did not request this, ignore this email.",
				user.Username, resetToken, config.Get().TokenTTLSec/60)
			html := fmt.Sprintf("<p>Hi %s,</p><p>Reset your password with this token:</p><p><b>%s</b></p><p>It expires in %d minutes. If you did not request this, ignore this email.</p>",
				user.Username, resetToken, config.Get().TokenTTLSec/60)
			utils.SendAsync(a.mailer, user.Email, "Reset your password", text, html)
		}
	}

	utils.Success(ctx, gin.H{"message": "if the address is registered, a reset email has been sent"})
}

// ResetPassword completes the reset flow: a valid unexpired token sets the
// new password atomically.
func (a *AuthController) ResetPassword(ctx *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid request payload")
		return
	}

	claims, err := utils.VerifyPurposeToken(req.Token, utils.PurposePasswordReset)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid or expired token")
		return
	}

	var user models.User
	if err := a.db.First(&user, claims.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid or expired token")
		return
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", user.PasswordHash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to update password")
		return
	}

	utils.Success(ctx, gin.H{"message": "your password has been updated"})
}

// RequestEmailChange issues a token binding the session user and the proposed
// address, mailed to the new address.
func (a *AuthController) RequestEmailChange(ctx *gin.Context) {
	var req struct {
		NewEmail string `json:"new_email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40008, "invalid request payload")
		return
	}

	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	newEmail := strings.TrimSpace(req.NewEmail)
	changeToken, err := utils.IssuePurposeToken(utils.PurposeEmailChange, user.ID, newEmail, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to issue token")
		return
	}
	text := fmt.Sprintf("Hi %s,\n\nConfirm your new email address with this token:\n\n%s\n\nIt expires in %d minutes.",
		user.Username, changeToken, config.Get().TokenTTLSec/60)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Confirm your new email address with this token:</p><p><b>%s</b></p><p>It expires in %d minutes.</p>",
		user.Username, changeToken, config.Get().TokenTTLSec/60)
	utils.SendAsync(a.mailer, newEmail, "Confirm your new email address", text, html)

	utils.Success(ctx, gin.H{"message": "a confirmation email has been sent to the new address"})
}

// ConfirmEmailChange applies the new address carried by the token. Uniqueness
// is re-checked inside the transaction so a collision surfaces as a conflict
// rather than a constraint violation.
func (a *AuthController) ConfirmEmailChange(ctx *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40009, "invalid request payload")
		return
	}

	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	claims, err := utils.VerifyPurposeToken(req.Token, utils.PurposeEmailChange)
	if err != nil || claims.UserID != user.ID || claims.NewEmail == "" {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid or expired token")
		return
	}

	err = a.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("email = ? AND id <> ?", claims.NewEmail, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Model(user).Update("email", claims.NewEmail).Error
	})
	if err != nil {
		if err == gorm.ErrDuplicatedKey || isDuplicateEntry(err) {
			utils.Error(ctx, http.StatusConflict, 40902, "email already taken")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50008, "failed to update email")
		return
	}

	utils.Success(ctx, gin.H{"message": "your email address has been updated"})
}

// TOTPSetup returns the provisioning URI for the pending secret. Only valid
// while 2FA is disabled.
func (a *AuthController) TOTPSetup(ctx *gin.Context) {
	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if user.TOTPEnabled {
		utils.Error(ctx, http.StatusBadRequest, 40011, "two-factor authentication already enabled")
		return
	}

	uri, err := utils.TOTPProvisioningURI(user.TOTPSecret, user.Username, "microblog")
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50009, "failed to build provisioning uri")
		return
	}

	utils.Success(ctx, gin.H{"secret": user.TOTPSecret, "provisioning_uri": uri})
}

// TOTPEnable turns on 2FA after the user proves possession of the secret with
// one valid code. A failed code changes nothing.
func (a *AuthController) TOTPEnable(ctx *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if user.TOTPEnabled {
		utils.Error(ctx, http.StatusBadRequest, 40011, "two-factor authentication already enabled")
		return
	}
	if !utils.VerifyTOTP(user.TOTPSecret, strings.TrimSpace(req.Code)) {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid two-factor code")
		return
	}

	if err := a.db.Model(user).Update("totp_enabled", true).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to enable two-factor authentication")
		return
	}

	utils.Success(ctx, gin.H{"message": "two-factor authentication enabled"})
}

// TOTPDisable turns off 2FA after one valid code and rotates the secret so a
// leaked one dies with the setting.
func (a *AuthController) TOTPDisable(ctx *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !user.TOTPEnabled {
		utils.Error(ctx, http.StatusBadRequest, 40014, "two-factor authentication is not enabled")
		return
	}
	if !utils.VerifyTOTP(user.TOTPSecret, strings.TrimSpace(req.Code)) {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid two-factor code")
		return
	}

	secret, err := utils.GenerateTOTPSecret()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to rotate secret")
		return
	}
	if err := a.db.Model(user).Updates(map[string]interface{}{
		"totp_enabled": false,
		"totp_secret":  secret,
	}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to disable two-factor authentication")
		return
	}

	utils.Success(ctx, gin.H{"message": "two-factor authentication disabled"})
}

// DeleteAccount removes the user and every dependent row after password
// re-verification. All deletions commit in one transaction.
func (a *AuthController) DeleteAccount(ctx *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40015, "invalid request payload")
		return
	}

	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !user.VerifyPassword(req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "invalid credentials")
		return
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		// comments on the user's posts go with the posts
		if err := tx.Where("post_id IN (?)",
			tx.Model(&models.Post{}).Select("id").Where("user_id = ?", user.ID),
		).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", user.ID, user.ID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to delete account")
		return
	}

	utils.Success(ctx, gin.H{"message": "your data has been permanently deleted"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	utils.Success(ctx, sanitizeUserResponseOwner(*user))
}

// UpdateProfile edits the caller's own profile fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Nickname string `json:"nickname"`
		About    string `json:"about"`
		Location string `json:"location"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40016, "invalid request payload")
		return
	}

	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	// profile text is rendered back to other users, so strip markup on write
	updates := map[string]interface{}{
		"nickname": utils.Sanitize(strings.TrimSpace(req.Nickname)),
		"about":    utils.Sanitize(req.About),
		"location": utils.Sanitize(strings.TrimSpace(req.Location)),
	}
	if uname := strings.TrimSpace(req.Username); uname != "" && uname != user.Username {
		if !validUsername(uname) {
			utils.Error(ctx, http.StatusBadRequest, 40002, "username may contain letters, digits and '-' only")
			return
		}
		updates["username"] = uname
	}

	if err := a.db.Model(user).Updates(updates).Error; err != nil {
		if isDuplicateEntry(err) {
			utils.Error(ctx, http.StatusConflict, 40901, "username already taken")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to update profile")
		return
	}

	if err := a.db.Preload("Role").First(user, user.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to update profile")
		return
	}
	utils.Success(ctx, sanitizeUserResponseOwner(*user))
}

// GetUserPublicByUsername returns a public profile with graph counts.
func (a *AuthController) GetUserPublicByUsername(ctx *gin.Context) {
	uname := strings.TrimSpace(ctx.Param("username"))
	if uname == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "missing username")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", uname).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to get user")
		return
	}

	var following, followers int64
	a.db.Model(&models.Follow{}).Where("follower_id = ? AND followed_id <> ?", user.ID, user.ID).Count(&following)
	a.db.Model(&models.Follow{}).Where("followed_id = ? AND follower_id <> ?", user.ID, user.ID).Count(&followers)

	payload := sanitizeUserResponse(user)
	payload["following_count"] = following
	payload["follower_count"] = followers
	utils.Success(ctx, payload)
}

// ListUsers returns paginated users. Requires the MODERATE permission.
func (a *AuthController) ListUsers(ctx *gin.Context) {
	caller, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !caller.Can(models.PermModerate) {
		utils.Error(ctx, http.StatusForbidden, 40301, "permission denied")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), 20)

	var total int64
	if err := a.db.Model(&models.User{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50000, "failed to count users")
		return
	}

	var users []models.User
	if err := a.db.Preload("Role").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to retrieve users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, sanitizeUserResponseOwner(u))
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// AdminUpdateUser edits an arbitrary account. Requires the ADMIN permission.
func (a *AuthController) AdminUpdateUser(ctx *gin.Context) {
	caller, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !caller.IsAdmin() {
		utils.Error(ctx, http.StatusForbidden, 40301, "permission denied")
		return
	}

	var req struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		Confirmed *bool   `json:"confirmed"`
		Role      *string `json:"role"`
		Nickname  *string `json:"nickname"`
		About     *string `json:"about"`
		Location  *string `json:"location"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40017, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to get user")
		return
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		updates["username"] = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Confirmed != nil {
		updates["confirmed"] = *req.Confirmed
	}
	if req.Nickname != nil {
		updates["nickname"] = utils.Sanitize(*req.Nickname)
	}
	if req.About != nil {
		updates["about"] = utils.Sanitize(*req.About)
	}
	if req.Location != nil {
		updates["location"] = utils.Sanitize(*req.Location)
	}
	if req.Role != nil {
		var role models.Role
		if err := a.db.Where("name = ?", *req.Role).First(&role).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40018, "unknown role")
			return
		}
		updates["role_id"] = role.ID
	}

	if len(updates) > 0 {
		if err := a.db.Model(&user).Updates(updates).Error; err != nil {
			if isDuplicateEntry(err) {
				utils.Error(ctx, http.StatusConflict, 40901, "username or email already taken")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to update profile")
			return
		}
	}

	if err := a.db.Preload("Role").First(&user, user.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to get user")
		return
	}
	utils.Success(ctx, sanitizeUserResponseOwner(user))
}

// validUsername allows letters, digits and '-'.
func validUsername(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == '-' {
			continue
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return false
	}
	return true
}
