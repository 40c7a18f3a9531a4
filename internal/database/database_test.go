package database

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-steps-api/internal/models"
)

func TestConnectRedis(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client, err := ConnectRedis(context.Background(), "redis://"+mini.Addr())
	require.NoError(t, err)
	require.NotNil(t, client)
	require.NoError(t, client.Close())

	disabled, err := ConnectRedis(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, disabled)

	_, err = ConnectRedis(context.Background(), "://bad")
	require.Error(t, err)
}

func TestConnectPostgresRequiresDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, model := range []interface{}{&models.Assignment{}, &models.Submission{}, &models.SubmissionDraft{}, &models.Student{}} {
		require.True(t, db.Migrator().HasTable(model))
	}
}
