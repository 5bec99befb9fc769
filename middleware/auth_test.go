package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/microblog/config"
	"github.com/cppla/microblog/models"
	"github.com/cppla/microblog/utils"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	config.SetForTesting(config.AppConfig{SecretKey: "test-secret", TokenTTLSec: 3600})
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}))
	require.NoError(t, models.SeedRoles(db))

	r := gin.New()
	r.GET("/whoami", AuthRequired(db), func(ctx *gin.Context) {
		id := ctx.GetUint(ContextUserIDKey)
		ctx.JSON(http.StatusOK, gin.H{"id": id, "username": ctx.GetString(ContextUsernameKey)})
	})
	return r, db
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredRejectsBadHeaders(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer not-a-jwt").Code)
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	r, db := newAuthTestRouter(t)

	user := models.User{Username: "alice", Email: "alice@test.com"}
	require.NoError(t, user.SetPassword("cat123"))
	require.NoError(t, db.Create(&user).Error)
	before := user.LastSeenAt

	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	w := get(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)

	// the middleware refreshes last-seen as a side effect
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.LastSeenAt.After(before))
}

func TestAuthRequiredRejectsRevokedToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	token, err := utils.GenerateToken(1, "alice", time.Hour)
	require.NoError(t, err)
	utils.BlacklistToken(token, time.Now().Add(time.Hour))

	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+token).Code)
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	token, err := utils.GenerateToken(1, "alice", -time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+token).Code)
}

func TestConfirmedRequired(t *testing.T) {
	config.SetForTesting(config.AppConfig{SecretKey: "test-secret", TokenTTLSec: 3600})
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}))
	require.NoError(t, models.SeedRoles(db))

	r := gin.New()
	r.GET("/members", AuthRequired(db), ConfirmedRequired(db), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})

	user := models.User{Username: "alice", Email: "alice@test.com"}
	require.NoError(t, user.SetPassword("cat123"))
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)

	req := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/members", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, request)
		return w
	}

	assert.Equal(t, http.StatusForbidden, req().Code)

	require.NoError(t, db.Model(&user).Update("confirmed", true).Error)
	assert.Equal(t, http.StatusNoContent, req().Code)

	// a token for a deleted account is rejected outright
	ghost, err := utils.GenerateToken(user.ID+100, "ghost", time.Hour)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/members", nil)
	request.Header.Set("Authorization", "Bearer "+ghost)
	r.ServeHTTP(w, request)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
