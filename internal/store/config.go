package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("config key not found")

// 配置项键
const (
	KeyCurrentStandard = "current_standard"
)

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
		}
		return "", err
	}
	return value, nil
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// GetCurrentStandard 当前分级标准，未设置时返回 fallback
func (s *Store) GetCurrentStandard(fallback string) (string, error) {
	v, err := s.GetConfig(KeyCurrentStandard)
	if errors.Is(err, ErrConfigNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get current standard: %w", err)
	}
	return v, nil
}

// SetCurrentStandard 设置当前分级标准
func (s *Store) SetCurrentStandard(id string) error {
	if err := s.SetConfig(KeyCurrentStandard, id); err != nil {
		return fmt.Errorf("failed to set current standard: %w", err)
	}
	return nil
}
