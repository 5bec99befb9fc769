package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Role{}, &User{}, &Follow{}, &Post{}, &Comment{}))
	return db
}

func TestPermissionBits(t *testing.T) {
	r := Role{}
	assert.False(t, r.HasPermission(PermFollow))

	r.AddPermission(PermFollow)
	r.AddPermission(PermComment)
	assert.True(t, r.HasPermission(PermFollow))
	assert.True(t, r.HasPermission(PermComment))
	assert.True(t, r.HasPermission(PermFollow|PermComment))
	assert.False(t, r.HasPermission(PermWrite))

	// adding twice leaves the mask unchanged
	before := r.Permissions
	r.AddPermission(PermFollow)
	assert.Equal(t, before, r.Permissions)

	r.RemovePermission(PermComment)
	assert.False(t, r.HasPermission(PermComment))
	assert.True(t, r.HasPermission(PermFollow))

	// removing an unset bit is a no-op
	r.RemovePermission(PermAdmin)
	assert.Equal(t, PermFollow, r.Permissions)

	r.ResetPermissions()
	assert.Equal(t, 0, r.Permissions)
}

func TestSeedRoles(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, SeedRoles(db))

	var roles []Role
	require.NoError(t, db.Order("id").Find(&roles).Error)
	require.Len(t, roles, 3)

	byName := map[string]Role{}
	for _, r := range roles {
		byName[r.Name] = r
	}
	assert.Equal(t, PermFollow|PermComment|PermWrite, byName[RoleUser].Permissions)
	assert.Equal(t, PermFollow|PermComment|PermWrite|PermModerate, byName[RoleModerator].Permissions)
	assert.Equal(t, PermFollow|PermComment|PermWrite|PermModerate|PermAdmin, byName[RoleAdministrator].Permissions)
}

func TestSeedRolesIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, SeedRoles(db))

	var first []Role
	require.NoError(t, db.Order("id").Find(&first).Error)

	require.NoError(t, SeedRoles(db))
	require.NoError(t, SeedRoles(db))

	var again []Role
	require.NoError(t, db.Order("id").Find(&again).Error)
	assert.Equal(t, first, again)

	var count int64
	require.NoError(t, db.Model(&Role{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestSeedRolesRepairsDriftedMask(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, SeedRoles(db))

	require.NoError(t, db.Model(&Role{}).Where("name = ?", RoleUser).
		Update("permissions", PermAdmin).Error)

	require.NoError(t, SeedRoles(db))

	var r Role
	require.NoError(t, db.Where("name = ?", RoleUser).First(&r).Error)
	assert.Equal(t, PermFollow|PermComment|PermWrite, r.Permissions)
}
