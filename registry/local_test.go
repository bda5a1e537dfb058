package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/featconf/featypes"
)

func sampleRegistry() *Registry {
	return &Registry{
		Project: "driver",
		FeatureTables: []FeatureTable{
			{
				Name:     "hourly_stats",
				Entities: []string{"driver_id"},
				Features: []FeatureColumn{
					{Name: "trips", ValueType: featypes.TypeInt32},
					{Name: "rating", ValueType: featypes.TypeDouble},
				},
				MaxAge: time.Hour,
			},
		},
	}
}

// TestLocalStoreRoundTrip 写入后读取应返回相同的文档内容
func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.db")
	s, err := NewLocalStore(path)
	require.NoError(t, err)

	reg := sampleRegistry()
	require.NoError(t, s.UpdateRegistry(ctx, reg))
	assert.NotEmpty(t, reg.VersionID, "写入应生成 VersionID")
	assert.False(t, reg.LastUpdated.IsZero())

	loaded, err := s.GetRegistry(ctx)
	require.NoError(t, err)
	assert.Equal(t, reg.VersionID, loaded.VersionID)
	assert.Equal(t, "driver", loaded.Project)

	table := loaded.Table("hourly_stats")
	require.NotNil(t, table)
	assert.Equal(t, []string{"driver_id"}, table.Entities)
	assert.Equal(t, featypes.TypeDouble, table.Features[1].ValueType)

	assert.Nil(t, loaded.Table("nonexistent"))
}

// TestLocalStoreVersionChanges 每次写入生成新的 VersionID
func TestLocalStoreVersionChanges(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)

	reg := sampleRegistry()
	require.NoError(t, s.UpdateRegistry(ctx, reg))
	first := reg.VersionID

	require.NoError(t, s.UpdateRegistry(ctx, reg))
	assert.NotEqual(t, first, reg.VersionID)
}

// TestLocalStoreMissing 文件不存在应返回 ErrRegistryNotFound
func TestLocalStoreMissing(t *testing.T) {
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "nope.db"))
	require.NoError(t, err)

	_, err = s.GetRegistry(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "have you applied")
}

// TestLocalStoreCorrupt 无法解码的文件应返回 ErrRegistryCorrupt
func TestLocalStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.db")
	require.NoError(t, os.WriteFile(path, []byte("not msgpack at all"), 0644))

	s, err := NewLocalStore(path)
	require.NoError(t, err)

	_, err = s.GetRegistry(context.Background())
	assert.ErrorIs(t, err, ErrRegistryCorrupt)
}

// TestLocalStoreTeardown Teardown 删除文件且幂等
func TestLocalStoreTeardown(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.db")
	s, err := NewLocalStore(path)
	require.NoError(t, err)

	require.NoError(t, s.UpdateRegistry(ctx, sampleRegistry()))
	require.NoError(t, s.Teardown())

	_, err = s.GetRegistry(ctx)
	assert.True(t, IsNotFound(err))

	assert.NoError(t, s.Teardown())
}

// TestNewLocalStoreEmptyPath 空路径应报错
func TestNewLocalStoreEmptyPath(t *testing.T) {
	_, err := NewLocalStore("")
	assert.Error(t, err)
}
