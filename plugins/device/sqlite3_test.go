package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlite3InsertMany(t *testing.T) {
	ctx := context.Background()
	service := setup(t)

	require.NoError(t, service.InsertMany(ctx, nil))
	count, err := service.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	devices := []*Device{
		{ID: 7, Name: "AccessPoint1", IPAddress: "10.0.0.7"},
		{ID: 7, Name: "AccessPoint2", IPAddress: "not-an-ip"},
	}
	require.NoError(t, service.InsertMany(ctx, devices))

	found, err := service.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, devices, found)

	none, err := service.FindByID(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSqlite3FindAllEmpty(t *testing.T) {
	devices, err := setup(t).FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestSqlite3Table(t *testing.T) {
	service := setup(t)
	assert.True(t, service.db.Migrator().HasTable(CollectionName))
	assert.True(t, service.db.Migrator().HasColumn(&sqliteDevice{}, "ip_address"))
}
