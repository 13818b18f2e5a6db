package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-dev/bugtrack/internal/config"
	"github.com/monocle-dev/bugtrack/internal/logging"
	"github.com/monocle-dev/bugtrack/internal/models"
)

func TestConnectMigrateClose(t *testing.T) {
	database, err := Connect(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          "file:setup-test?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, MigrateDatabase(database))

	var users int64
	require.NoError(t, database.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)

	var missing models.User
	assert.Error(t, database.First(&missing, 42).Error)

	assert.NoError(t, Close(database))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "mysql"}, logging.Discard())
	assert.Error(t, err)
}
