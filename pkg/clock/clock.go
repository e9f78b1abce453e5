package clock

import (
	"sync"
	"time"
)

// Clock 提供以毫秒计的播放位置
type Clock interface {
	PositionMs() int64
}

// PlaybackState 播放状态
type PlaybackState int

const (
	StateStopped PlaybackState = iota
	StatePlaying
	StatePaused
)

func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// SoftClock 是不依赖音频输出的软件播放时钟
// 播放中位置 = 基准位置 + 自基准时刻以来的经过时间 * 速率
type SoftClock struct {
	mu         sync.Mutex
	now        func() time.Time
	state      PlaybackState
	baseMs     int64     // 最近一次 Play/Pause/Seek 时的位置
	baseAt     time.Time // 记录 baseMs 的时刻
	rate       float64
	durationMs int64 // 0 表示未知
}

// NewSoftClock 创建一个停止状态的时钟；now 为 nil 时使用 time.Now
func NewSoftClock(now func() time.Time) *SoftClock {
	if now == nil {
		now = time.Now
	}
	return &SoftClock{now: now, rate: 1}
}

// SetDuration 设置曲目时长，位置不会超过它
func (c *SoftClock) SetDuration(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.durationMs = d.Milliseconds()
}

// Play 开始或继续播放
func (c *SoftClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StatePlaying {
		return
	}
	c.baseAt = c.now()
	c.state = StatePlaying
}

// Pause 暂停并冻结当前位置
func (c *SoftClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying {
		return
	}
	c.baseMs = c.positionLocked()
	c.state = StatePaused
}

// Stop 停止并回到开头
func (c *SoftClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseMs = 0
	c.state = StateStopped
}

// Seek 跳转到指定位置，保持当前播放状态
func (c *SoftClock) Seek(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseMs = c.clampLocked(ms)
	c.baseAt = c.now()
}

// SetRate 修改播放速率（小于等于 0 时忽略）
func (c *SoftClock) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseMs = c.positionLocked()
	c.baseAt = c.now()
	c.rate = rate
}

// State 返回当前播放状态
func (c *SoftClock) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PositionMs 实现 Clock
func (c *SoftClock) PositionMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

// Finished 时长已知且已经播放到结尾
func (c *SoftClock) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.durationMs > 0 && c.positionLocked() >= c.durationMs
}

func (c *SoftClock) positionLocked() int64 {
	if c.state != StatePlaying {
		return c.baseMs
	}
	elapsed := c.now().Sub(c.baseAt)
	return c.clampLocked(c.baseMs + int64(float64(elapsed.Milliseconds())*c.rate))
}

func (c *SoftClock) clampLocked(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	if c.durationMs > 0 && ms > c.durationMs {
		return c.durationMs
	}
	return ms
}
