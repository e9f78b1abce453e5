package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// sqliteStore 是 PreferenceStore 接口的 SQLite 实现
type sqliteStore struct {
	db     *sql.DB
	logger *log.Logger
}

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS track_offsets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		track_key TEXT NOT NULL UNIQUE,
		offset_ms INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

// NewSQLiteStore 初始化 SQLite 数据库并返回 PreferenceStore 接口实例
func NewSQLiteStore(dataSourceName string, logger *log.Logger) (PreferenceStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// 尝试创建表，如果不存在
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close() // 创建表失败也要关闭连接
		return nil, fmt.Errorf("failed to create track_offsets table: %w", err)
	}
	logger.Printf("SQLite database initialized at: %s", dataSourceName)
	return &sqliteStore{db: db, logger: logger}, nil
}

// Close 关闭数据库连接
func (s *sqliteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.logger.Println("SQLite database connection closed.")
		return err
	}
	return nil
}

// TrackOffset 读取音轨的用户偏移
func (s *sqliteStore) TrackOffset(trackKey string) (int64, bool, error) {
	var offset int64
	err := s.db.QueryRow("SELECT offset_ms FROM track_offsets WHERE track_key = ?", trackKey).Scan(&offset)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		s.logger.Printf("ERROR: Failed to read offset for %s: %v", trackKey, err)
		return 0, false, fmt.Errorf("failed to read offset for %s: %w", trackKey, err)
	}
	return offset, true, nil
}

// SetTrackOffset 保存音轨的用户偏移，已存在时覆盖
func (s *sqliteStore) SetTrackOffset(trackKey string, offsetMs int64) error {
	_, err := s.db.Exec(`INSERT INTO track_offsets (track_key, offset_ms, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(track_key) DO UPDATE SET offset_ms = excluded.offset_ms, updated_at = excluded.updated_at`,
		trackKey, offsetMs, time.Now())
	if err != nil {
		s.logger.Printf("ERROR: Failed to save offset for %s: %v", trackKey, err)
		return fmt.Errorf("failed to save offset for %s: %w", trackKey, err)
	}
	s.logger.Printf("Offset for %s saved: %dms.", trackKey, offsetMs)
	return nil
}

// DeleteTrackOffset 删除音轨的用户偏移，不存在时不报错
func (s *sqliteStore) DeleteTrackOffset(trackKey string) error {
	if _, err := s.db.Exec("DELETE FROM track_offsets WHERE track_key = ?", trackKey); err != nil {
		s.logger.Printf("ERROR: Failed to delete offset for %s: %v", trackKey, err)
		return fmt.Errorf("failed to delete offset for %s: %w", trackKey, err)
	}
	return nil
}
