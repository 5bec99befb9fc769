package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/cppla/microblog/config"
	"github.com/cppla/microblog/utils"
)

// User represents an account. Passwords are stored as bcrypt hashes only;
// there is no plaintext field to read back.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Confirmed    bool      `gorm:"not null;default:false" json:"confirmed"`
	TOTPSecret   string    `gorm:"size:64" json:"-"`
	TOTPEnabled  bool      `gorm:"not null;default:false" json:"totp_enabled"`
	Nickname     string    `gorm:"size:64" json:"nickname"`
	About        string    `gorm:"type:text" json:"about"`
	Location     string    `gorm:"size:64" json:"location"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	RoleID   uint      `gorm:"index" json:"role_id"`
	Role     Role      `json:"-"`
	Posts    []Post    `json:"-"`
	Comments []Comment `json:"-"`
}

// BeforeCreate assigns the initial role and bootstraps the 2FA secret.
// The account whose signup email matches the configured admin email becomes
// Administrator; everyone else starts as a regular User.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.LastSeenAt.IsZero() {
		u.LastSeenAt = now
	}
	u.UpdatedAt = now

	if u.TOTPSecret == "" {
		secret, err := utils.GenerateTOTPSecret()
		if err != nil {
			return err
		}
		u.TOTPSecret = secret
	}

	if u.RoleID == 0 {
		name := RoleUser
		if admin := config.Get().AdminEmail; admin != "" && u.Email == admin {
			name = RoleAdministrator
		}
		var role Role
		if err := tx.Where("name = ?", name).First(&role).Error; err != nil {
			return err
		}
		u.RoleID = role.ID
	}
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// SetPassword replaces the stored hash with the bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// VerifyPassword reports whether candidate matches the stored hash.
func (u *User) VerifyPassword(candidate string) bool {
	return utils.CheckPassword(u.PasswordHash, candidate)
}

// Can reports whether the user's role carries the given permission bit.
// Role must be preloaded or the check fails closed.
func (u *User) Can(perm int) bool {
	if u.Role.ID == 0 {
		return false
	}
	return u.Role.HasPermission(perm)
}

// IsAdmin reports whether the user holds the ADMIN bit.
func (u *User) IsAdmin() bool {
	return u.Can(PermAdmin)
}

// Ping refreshes the last-seen timestamp without touching other columns.
func (u *User) Ping(db *gorm.DB) error {
	now := time.Now()
	u.LastSeenAt = now
	return db.Model(u).UpdateColumn("last_seen_at", now).Error
}
