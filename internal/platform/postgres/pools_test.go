package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPools(t *testing.T) {
	primary, primaryMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	replica, replicaMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	pools := postgres.NewPools(primary, replica)
	assert.Same(t, primary, pools.Primary())
	assert.Same(t, replica, pools.Replica())

	primaryMock.ExpectPing()
	replicaMock.ExpectPing()
	require.NoError(t, pools.Ping(context.Background()))

	replicaMock.ExpectPing().WillReturnError(errors.New("replica down"))
	assert.Error(t, pools.Ping(context.Background()), "one failing pool fails the whole check")

	primaryMock.ExpectClose()
	replicaMock.ExpectClose()
	assert.NoError(t, pools.Close())

	assert.NoError(t, primaryMock.ExpectationsWereMet())
	assert.NoError(t, replicaMock.ExpectationsWereMet())
}

func TestNewPools_ReplicaDefaultsToPrimary(t *testing.T) {
	primary, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	pools := postgres.NewPools(primary, nil)
	assert.Same(t, primary, pools.Replica())

	mock.ExpectPing()
	require.NoError(t, pools.Ping(context.Background()), "a shared pool is pinged once")

	mock.ExpectClose()
	assert.NoError(t, pools.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
