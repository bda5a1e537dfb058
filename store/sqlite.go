package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ceyewan/featconf/clog"
	"github.com/ceyewan/featconf/featypes"
	"github.com/ceyewan/featconf/xerrors"
)

// SQLiteConfig SQLite 线上存储配置
type SQLiteConfig struct {
	// Name 存储名，来自配置文档中 stores[].name (默认: "default")
	Name string `mapstructure:"name"`

	// Path 数据库文件路径 (默认: "data/online.db")
	Path string `mapstructure:"path"`
}

// setDefaults 设置默认值
func (c *SQLiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Path == "" {
		c.Path = "data/online.db"
	}
}

// 物理表名只允许字母数字下划线，防止表名拼接注入
var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type sqliteStore struct {
	cfg    *SQLiteConfig
	logger clog.Logger

	mu     sync.Mutex
	db     *gorm.DB
	closed bool
}

// NewSQLite 创建 SQLite 线上存储。
// 连接在首次操作时延迟建立。
func NewSQLite(cfg *SQLiteConfig, opts ...Option) (OnlineStore, error) {
	if cfg == nil {
		cfg = &SQLiteConfig{}
	}
	cfg.setDefaults()

	opt := &options{}
	for _, o := range opts {
		o(opt)
	}
	opt.applyDefaults()

	return &sqliteStore{
		cfg:    cfg,
		logger: opt.logger.With(clog.String("store", "sqlite"), clog.String("name", cfg.Name)),
	}, nil
}

// getDB 返回连接，必要时建立。幂等且并发安全。
func (s *sqliteStore) getDB(ctx context.Context) (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, xerrors.Wrapf(ErrClosed, "sqlite store[%s]", s.cfg.Name)
	}
	if s.db != nil {
		return s.db, nil
	}

	if dir := filepath.Dir(s.cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, xerrors.Wrapf(ErrConnection, "sqlite store[%s]: create dir: %v", s.cfg.Name, err)
		}
	}

	s.logger.Info("opening sqlite online store", clog.String("path", s.cfg.Path))

	db, err := gorm.Open(sqlite.Open(s.cfg.Path), &gorm.Config{})
	if err != nil {
		s.logger.Error("failed to open sqlite", clog.Error(err))
		return nil, xerrors.Wrapf(ErrConnection, "sqlite store[%s]: %v", s.cfg.Name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, xerrors.Wrapf(ErrConnection, "sqlite store[%s]: get db instance: %v", s.cfg.Name, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, xerrors.Wrapf(ErrConnection, "sqlite store[%s]: ping failed: %v", s.cfg.Name, err)
	}

	s.db = db
	return db, nil
}

// OnlineWriteBatch 批量写入，同键覆盖（UPDATE 后 INSERT OR IGNORE）
func (s *sqliteStore) OnlineWriteBatch(ctx context.Context, table TableRef, rows []WriteRow) error {
	tableID, err := tableID(table)
	if err != nil {
		return err
	}
	db, err := s.getDB(ctx)
	if err != nil {
		return err
	}

	updateSQL := fmt.Sprintf(
		`UPDATE %s SET value = ?, event_ts = ?, created_ts = ? WHERE entity_key = ?`, tableID)
	insertSQL := fmt.Sprintf(
		`INSERT OR IGNORE INTO %s (entity_key, value, event_ts, created_ts) VALUES (?, ?, ?, ?)`, tableID)

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			keyBin, err := featypes.SerializeEntityKey(row.EntityKey)
			if err != nil {
				return xerrors.Wrap(err, "serialize entity key")
			}
			valueBin, err := featypes.EncodeRow(row.Features)
			if err != nil {
				return err
			}

			eventTS := row.EventTS.UTC()
			var createdTS any
			if row.CreatedTS != nil {
				createdTS = row.CreatedTS.UTC()
			}

			if err := tx.Exec(updateSQL, valueBin, eventTS, createdTS, keyBin).Error; err != nil {
				return xerrors.Wrapf(err, "update %s", tableID)
			}
			if err := tx.Exec(insertSQL, keyBin, valueBin, eventTS, createdTS).Error; err != nil {
				return xerrors.Wrapf(err, "insert %s", tableID)
			}
		}
		return nil
	})
}

// OnlineRead 一次查询取回所有键，再按输入顺序组装结果
func (s *sqliteStore) OnlineRead(ctx context.Context, table TableRef, keys []featypes.EntityKey) ([]ReadResult, error) {
	tableID, err := tableID(table)
	if err != nil {
		return nil, err
	}
	db, err := s.getDB(ctx)
	if err != nil {
		return nil, err
	}

	keyBins := make([][]byte, len(keys))
	for i, key := range keys {
		bin, err := featypes.SerializeEntityKey(key)
		if err != nil {
			return nil, xerrors.Wrap(err, "serialize entity key")
		}
		keyBins[i] = bin
	}

	type rowScan struct {
		EntityKey []byte
		Value     []byte
		EventTS   time.Time
	}

	rows, err := db.WithContext(ctx).Raw(fmt.Sprintf(
		`SELECT entity_key, value, event_ts FROM %s WHERE entity_key IN ?`, tableID),
		keyBins).Rows()
	if err != nil {
		return nil, xerrors.Wrapf(err, "read %s", tableID)
	}
	defer rows.Close()

	found := make(map[string]rowScan, len(keyBins))
	for rows.Next() {
		var r rowScan
		if err := rows.Scan(&r.EntityKey, &r.Value, &r.EventTS); err != nil {
			return nil, xerrors.Wrapf(err, "scan %s", tableID)
		}
		found[string(r.EntityKey)] = r
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Wrapf(err, "read %s", tableID)
	}

	results := make([]ReadResult, len(keys))
	for i, bin := range keyBins {
		r, ok := found[string(bin)]
		if !ok {
			continue
		}
		features, err := featypes.DecodeRow(r.Value)
		if err != nil {
			return nil, err
		}
		results[i] = ReadResult{EventTS: r.EventTS, Features: features}
	}
	return results, nil
}

// Update 建出保留的表并删除废弃的表
func (s *sqliteStore) Update(ctx context.Context, keep []TableRef, remove []TableRef) error {
	db, err := s.getDB(ctx)
	if err != nil {
		return err
	}

	for _, table := range keep {
		id, err := tableID(table)
		if err != nil {
			return err
		}
		createSQL := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (entity_key BLOB, value BLOB, event_ts DATETIME, created_ts DATETIME, PRIMARY KEY (entity_key))`, id)
		if err := db.WithContext(ctx).Exec(createSQL).Error; err != nil {
			return xerrors.Wrapf(err, "create table %s", id)
		}
		indexSQL := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_ek ON %s (entity_key)`, id, id)
		if err := db.WithContext(ctx).Exec(indexSQL).Error; err != nil {
			return xerrors.Wrapf(err, "create index on %s", id)
		}
	}

	for _, table := range remove {
		id, err := tableID(table)
		if err != nil {
			return err
		}
		if err := db.WithContext(ctx).Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, id)).Error; err != nil {
			return xerrors.Wrapf(err, "drop table %s", id)
		}
	}
	return nil
}

// Teardown 关闭连接并删除数据库文件，幂等
func (s *sqliteStore) Teardown(ctx context.Context) error {
	if err := s.Close(); err != nil {
		return err
	}
	if err := os.Remove(s.cfg.Path); err != nil && !os.IsNotExist(err) {
		return xerrors.Wrapf(err, "remove %s", s.cfg.Path)
	}
	s.logger.Info("sqlite online store torn down", clog.String("path", s.cfg.Path))
	return nil
}

// Close 关闭连接，幂等
func (s *sqliteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		s.logger.Error("failed to close sqlite connection", clog.Error(err))
		return err
	}
	s.db = nil
	return nil
}

// tableID 拼出物理表名并校验标识符
func tableID(table TableRef) (string, error) {
	if table.Project == "" || table.Table == "" {
		return "", xerrors.Wrapf(ErrInvalidTableRef, "project %q, table %q", table.Project, table.Table)
	}
	id := table.Project + "_" + table.Table
	if !tableNamePattern.MatchString(id) {
		return "", xerrors.Wrapf(ErrInvalidTableRef, "illegal characters in %q", id)
	}
	return id, nil
}
