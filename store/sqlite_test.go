package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/featconf/config"
	"github.com/ceyewan/featconf/featypes"
)

func newTestStore(t *testing.T) OnlineStore {
	t.Helper()
	s, err := NewSQLite(&SQLiteConfig{
		Name: "test",
		Path: filepath.Join(t.TempDir(), "online.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func driverKey(id int64) featypes.EntityKey {
	return featypes.EntityKey{
		JoinKeys: []string{"driver_id"},
		Values:   []featypes.Value{featypes.Int64Value(id)},
	}
}

var statsTable = TableRef{Project: "driver", Table: "hourly_stats"}

// TestWriteThenRead 写入后读取应返回写入的特征行
func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Update(ctx, []TableRef{statsTable}, nil))

	eventTS := time.Date(2021, 4, 12, 10, 0, 0, 0, time.UTC)
	row := featypes.Row{
		"trips":  featypes.Int32Value(7),
		"rating": featypes.DoubleValue(4.9),
	}
	require.NoError(t, s.OnlineWriteBatch(ctx, statsTable, []WriteRow{
		{EntityKey: driverKey(1001), Features: row, EventTS: eventTS},
	}))

	results, err := s.OnlineRead(ctx, statsTable, []featypes.EntityKey{driverKey(1001)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Found())

	assert.Equal(t, eventTS.Unix(), results[0].EventTS.Unix())
	trips, ok := results[0].Features["trips"].Int32()
	require.True(t, ok)
	assert.Equal(t, int32(7), trips)
	rating, ok := results[0].Features["rating"].Double()
	require.True(t, ok)
	assert.Equal(t, 4.9, rating)
}

// TestUpsertOverwrites 同键重复写入应覆盖旧值
func TestUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Update(ctx, []TableRef{statsTable}, nil))

	write := func(trips int32, ts time.Time) {
		require.NoError(t, s.OnlineWriteBatch(ctx, statsTable, []WriteRow{{
			EntityKey: driverKey(1001),
			Features:  featypes.Row{"trips": featypes.Int32Value(trips)},
			EventTS:   ts,
		}}))
	}

	first := time.Date(2021, 4, 12, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	write(7, first)
	write(9, second)

	results, err := s.OnlineRead(ctx, statsTable, []featypes.EntityKey{driverKey(1001)})
	require.NoError(t, err)
	require.True(t, results[0].Found())

	trips, _ := results[0].Features["trips"].Int32()
	assert.Equal(t, int32(9), trips)
	assert.Equal(t, second.Unix(), results[0].EventTS.Unix())
}

// TestReadMissReturnsEmpty 未命中键返回空结果，结果顺序与 keys 对应
func TestReadMissReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Update(ctx, []TableRef{statsTable}, nil))

	require.NoError(t, s.OnlineWriteBatch(ctx, statsTable, []WriteRow{{
		EntityKey: driverKey(1001),
		Features:  featypes.Row{"trips": featypes.Int32Value(1)},
		EventTS:   time.Now(),
	}}))

	results, err := s.OnlineRead(ctx, statsTable, []featypes.EntityKey{
		driverKey(9999), driverKey(1001),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Found(), "未写入的键不应命中")
	assert.True(t, results[1].Found())
}

// TestUpdateDropsRemovedTables Update 应删除 remove 列表中的表
func TestUpdateDropsRemovedTables(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	old := TableRef{Project: "driver", Table: "deprecated"}
	require.NoError(t, s.Update(ctx, []TableRef{old}, nil))
	require.NoError(t, s.OnlineWriteBatch(ctx, old, []WriteRow{{
		EntityKey: driverKey(1),
		Features:  featypes.Row{"x": featypes.Int32Value(1)},
		EventTS:   time.Now(),
	}}))

	require.NoError(t, s.Update(ctx, nil, []TableRef{old}))

	_, err := s.OnlineRead(ctx, old, []featypes.EntityKey{driverKey(1)})
	assert.Error(t, err, "读被删除的表应失败")
}

// TestTeardownRemovesFile Teardown 应删除数据库文件且幂等
func TestTeardownRemovesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "online.db")
	s, err := NewSQLite(&SQLiteConfig{Name: "test", Path: path})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, []TableRef{statsTable}, nil))
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	require.NoError(t, s.Teardown(ctx))
	_, statErr = os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// 再次 Teardown 不报错
	assert.NoError(t, s.Teardown(ctx))
}

// TestInvalidTableRef 非法表引用应报错
func TestInvalidTableRef(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.OnlineRead(ctx, TableRef{Project: "driver", Table: "x; DROP TABLE y"}, nil)
	assert.ErrorIs(t, err, ErrInvalidTableRef)

	err = s.Update(ctx, []TableRef{{Project: "", Table: "stats"}}, nil)
	assert.ErrorIs(t, err, ErrInvalidTableRef)
}

// TestOpenFailureReleasesHandle 打开失败时不持有数据库句柄，Close 仍然干净
func TestOpenFailureReleasesHandle(t *testing.T) {
	ctx := context.Background()
	// 路径指向目录，驱动无法将其作为数据库文件打开
	s, err := NewSQLite(&SQLiteConfig{Name: "bad", Path: t.TempDir()})
	require.NoError(t, err)

	_, err = s.OnlineRead(ctx, TableRef{Project: "driver", Table: "stats"}, nil)
	assert.ErrorIs(t, err, ErrConnection)

	assert.NoError(t, s.Close())
}

// TestNewFromConfig 工厂按 activeStore 类型选择实现
func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	doc := `
feast:
  registry: /data/registry.db
  activeStore: local
  stores:
    - name: local
      type: SQLITE
      config:
        path: ` + filepath.Join(dir, "online.db") + `
    - name: online
      type: REDIS
grpc: {server: {port: 6566}}
rest: {server: {port: 8081}}
`
	cfg, err := config.LoadReader(strings.NewReader(doc))
	require.NoError(t, err)

	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

// TestNewRejectsRedis REDIS 类型没有随附的客户端实现
func TestNewRejectsRedis(t *testing.T) {
	doc := `
feast:
  registry: /data/registry.db
  activeStore: online
  stores:
    - name: online
      type: REDIS
grpc: {server: {port: 6566}}
rest: {server: {port: 8081}}
`
	cfg, err := config.LoadReader(strings.NewReader(doc))
	require.NoError(t, err)

	_, err = New(cfg)
	require.Error(t, err)
	assert.True(t, IsUnsupportedStoreType(err))
}
