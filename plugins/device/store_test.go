package device

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceSqlite(t *testing.T) {
	ctx := context.Background()
	config := Config{
		Store:        StoreSQLite,
		SQLiteConfig: SQLiteConfig{Filename: filepath.Join(t.TempDir(), dbName)},
	}

	service, err := NewService(ctx, config)
	require.NoError(t, err)
	_, err = Seed(ctx, service)
	require.NoError(t, err)
	require.NoError(t, service.Close(ctx))

	// the rows survive reopening the file
	service, err = NewService(ctx, config)
	require.NoError(t, err)
	defer service.Close(ctx)
	count, err := service.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestNewServiceUnknownStore(t *testing.T) {
	service, err := NewService(context.Background(), Config{Store: "redis"})
	assert.Nil(t, service)
	assert.True(t, errors.Is(err, ErrUnknownStore))
}
