package repository

import (
	"testing"

	"gorm.io/gorm"

	"dropship_admin_v1/internal/testutil"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.SetupDB(t)
}
