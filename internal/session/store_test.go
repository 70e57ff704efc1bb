package session

import (
	"testing"
	"time"
)

// TestStoreExpiry 测试条目过期后不可读取
func TestStoreExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New[string](time.Minute, 0)
	s.now = func() time.Time { return now }

	s.Put("a", "run-a")
	if v, ok := s.Get("a"); !ok || v != "run-a" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := s.Get("a"); ok {
		t.Fatalf("expired entry should be gone")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry should be deleted on read")
	}
}

// TestStoreMaxEntries 测试超出上限时淘汰最早的条目
func TestStoreMaxEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New[int](time.Hour, 2)
	s.now = func() time.Time { return now }

	s.Put("a", 1)
	now = now.Add(time.Second)
	s.Put("b", 2)
	now = now.Add(time.Second)
	s.Put("c", 3)

	if _, ok := s.Get("a"); ok {
		t.Fatalf("oldest entry should be evicted")
	}
	if v, ok := s.Get("c"); !ok || v != 3 {
		t.Fatalf("Get(c) = %v, %v", v, ok)
	}

	s.Put("b", 20)
	if s.Len() != 2 {
		t.Fatalf("overwriting should not evict, len = %d", s.Len())
	}
	s.Delete("b")
	if _, ok := s.Get("b"); ok {
		t.Fatalf("deleted entry still present")
	}
}

// TestStoreEvictionIgnoresReads 测试读取不刷新条目，淘汰按写入先后
func TestStoreEvictionIgnoresReads(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New[int](time.Hour, 2)
	s.now = func() time.Time { return now }

	s.Put("a", 1)
	now = now.Add(time.Second)
	s.Put("b", 2)
	now = now.Add(time.Second)
	if _, ok := s.Get("a"); !ok {
		t.Fatalf("a should still be cached")
	}
	s.Put("c", 3)

	if _, ok := s.Get("a"); ok {
		t.Fatalf("first inserted entry should be evicted even after a read")
	}
	if _, ok := s.Get("b"); !ok {
		t.Fatalf("b should survive")
	}
}
