// Package session 按 process_id 缓存处理结果，过期自动淘汰
package session

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Store 带 TTL 的内存缓存，一次写入多次读取
type Store[T any] struct {
	mu    sync.Mutex
	items map[string]entry[T]
	ttl   time.Duration
	limit int
	now   func() time.Time
}

// New 创建缓存；limit <= 0 表示不限数量
func New[T any](ttl time.Duration, limit int) *Store[T] {
	return &Store[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
		limit: limit,
		now:   time.Now,
	}
}

// Put 写入；超出数量上限时淘汰最早过期的条目
func (s *Store[T]) Put(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	if _, exists := s.items[id]; !exists && s.limit > 0 {
		for len(s.items) >= s.limit {
			s.evictOldestLocked()
		}
	}
	s.items[id] = entry[T]{value: v, expiresAt: now.Add(s.ttl)}
}

// Get 读取未过期的条目
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	v, ok := s.items[id]
	if !ok {
		return zero, false
	}
	if s.now().After(v.expiresAt) {
		delete(s.items, id)
		return zero, false
	}
	return v.value, true
}

// Delete 删除
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Len 当前条目数（含未清理的过期条目）
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[T]) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func (s *Store[T]) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for k, v := range s.items {
		if oldestID == "" || v.expiresAt.Before(oldestAt) {
			oldestID, oldestAt = k, v.expiresAt
		}
	}
	delete(s.items, oldestID)
}
