package middleware

import (
	"sync"
	"time"

	"dropship_admin_v1/pkg/upstream"
)

// SyncCooldown 记录每个上游资源最近一次同步的时间
// 手动同步与定时任务共用同一份记录，冷却期内不重复拉取同一资源
type SyncCooldown struct {
	mu        sync.Mutex
	last      map[string]time.Time
	intervals map[string]time.Duration
	fallback  time.Duration
	now       func() time.Time
}

// NewSyncCooldown fallback 用于 intervals 未列出的资源 (包括 all)
func NewSyncCooldown(fallback time.Duration, intervals map[string]time.Duration) *SyncCooldown {
	return &SyncCooldown{
		last:      make(map[string]time.Time),
		intervals: intervals,
		fallback:  fallback,
		now:       time.Now,
	}
}

// 类目量小、变动少，冷却更短
var defaultCooldown = NewSyncCooldown(2*time.Minute, map[string]time.Duration{
	string(upstream.ResourceCategories): time.Minute,
	string(upstream.ResourceProducts):   2 * time.Minute,
	string(upstream.ResourceAds):        2 * time.Minute,
})

// Cooldown 进程内共享的同步冷却记录
func Cooldown() *SyncCooldown {
	return defaultCooldown
}

// Interval 资源的冷却间隔
func (s *SyncCooldown) Interval(resource string) time.Duration {
	if d, ok := s.intervals[resource]; ok {
		return d
	}
	return s.fallback
}

// Acquire 冷却结束时占用本轮并返回 0, true，否则返回剩余冷却时间
func (s *SyncCooldown) Acquire(resource string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wait := s.remainingLocked(resource); wait > 0 {
		return wait, false
	}
	s.last[resource] = s.now()
	return 0, true
}

// Remaining 剩余冷却时间，不占用
func (s *SyncCooldown) Remaining(resource string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked(resource)
}

// Touch 同步成功后记录时间 (定时任务使用)
func (s *SyncCooldown) Touch(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[resource] = s.now()
}

// Release 清除记录，同步失败或资源非法时允许立即重试
func (s *SyncCooldown) Release(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, resource)
}

func (s *SyncCooldown) remainingLocked(resource string) time.Duration {
	last, ok := s.last[resource]
	if !ok {
		return 0
	}
	if wait := s.Interval(resource) - s.now().Sub(last); wait > 0 {
		return wait
	}
	return 0
}
