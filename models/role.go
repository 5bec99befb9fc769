package models

import "gorm.io/gorm"

// Permission bits. A role's mask is the additive union of these values.
const (
	PermFollow   = 1
	PermComment  = 2
	PermWrite    = 4
	PermModerate = 8
	PermAdmin    = 16
)

// Role is a named bundle of permission bits assigned to users.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Permissions int    `gorm:"not null;default:0" json:"permissions"`
	Users       []User `json:"-"`
}

// AddPermission sets the given bit if not already set.
func (r *Role) AddPermission(perm int) {
	if !r.HasPermission(perm) {
		r.Permissions |= perm
	}
}

// RemovePermission clears the given bit if set.
func (r *Role) RemovePermission(perm int) {
	if r.HasPermission(perm) {
		r.Permissions &^= perm
	}
}

// HasPermission reports whether every bit in perm is set in the mask.
func (r *Role) HasPermission(perm int) bool {
	return r.Permissions&perm == perm
}

// ResetPermissions zeroes the mask.
func (r *Role) ResetPermissions() {
	r.Permissions = 0
}

// RoleUser, RoleModerator and RoleAdministrator are the seeded role names.
const (
	RoleUser          = "User"
	RoleModerator     = "Moderator"
	RoleAdministrator = "Administrator"
)

// SeedRoles upserts the fixed role table by name, resetting and re-adding each
// permission bit. Running it repeatedly converges to the same state regardless
// of prior drift.
func SeedRoles(db *gorm.DB) error {
	table := map[string][]int{
		RoleUser:          {PermFollow, PermComment, PermWrite},
		RoleModerator:     {PermFollow, PermComment, PermWrite, PermModerate},
		RoleAdministrator: {PermFollow, PermComment, PermWrite, PermModerate, PermAdmin},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for name, perms := range table {
			var role Role
			err := tx.Where("name = ?", name).First(&role).Error
			if err == gorm.ErrRecordNotFound {
				role = Role{Name: name}
			} else if err != nil {
				return err
			}
			role.ResetPermissions()
			for _, perm := range perms {
				role.AddPermission(perm)
			}
			if err := tx.Save(&role).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
