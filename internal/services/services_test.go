package services

import (
	"strconv"
	"strings"
	"testing"

	"github.com/diewo77/dealflow/internal/db"
	"github.com/diewo77/dealflow/internal/models"
	"github.com/diewo77/dealflow/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, *store.Store) {
	t.Helper()
	conn, err := db.OpenTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return conn, store.New(conn)
}

var admin = Identity{UserID: 1, Username: "admin", Role: models.RoleAdmin}

func count(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Count(&n).Error)
	return n
}

func idList(ids ...uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
