package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/yleoer/lrcplayer/pkg/clock"
	"github.com/yleoer/lrcplayer/pkg/config"
	"github.com/yleoer/lrcplayer/pkg/display"
	"github.com/yleoer/lrcplayer/pkg/loader"
	"github.com/yleoer/lrcplayer/pkg/track"
	"github.com/yleoer/lrcplayer/pkg/tracker"
)

// LyricsLoader 由 loader.Loader 实现
type LyricsLoader interface {
	Load(ctx context.Context, t *track.Track) (loader.Result, error)
}

// Scheduler 负责按固定间隔轮询时钟，并调度歌词的延迟重新加载
type Scheduler struct {
	cfg      *config.Config
	clock    clock.Clock
	tracker  *tracker.Tracker
	loader   LyricsLoader
	renderer display.Renderer
	logger   *log.Logger

	stopWhen func() bool

	reloadMutex         sync.Mutex // 保护加载过程，同一时刻只有一次加载
	pendingReloads      map[string]*time.Timer
	pendingReloadsMutex sync.Mutex // 保护 pendingReloads map
}

// NewScheduler 创建一个新的 Scheduler 实例
func NewScheduler(
	cfg *config.Config,
	clk clock.Clock,
	tr *tracker.Tracker,
	ld LyricsLoader,
	renderer display.Renderer,
	logger *log.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:            cfg,
		clock:          clk,
		tracker:        tr,
		loader:         ld,
		renderer:       renderer,
		logger:         logger,
		pendingReloads: make(map[string]*time.Timer),
	}
}

// StopWhen 设置 Run 的结束条件，每次 Tick 之后检查
func (s *Scheduler) StopWhen(fn func() bool) {
	s.stopWhen = fn
}

// Run 每隔 TickInterval 执行一次 Tick，直到 ctx 结束或结束条件满足
// 正常结束返回 nil，ctx 被取消时返回 ctx.Err()
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	defer s.Stop()

	s.Tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
			if s.stopWhen != nil && s.stopWhen() {
				s.logger.Println("Playback finished.")
				return nil
			}
		}
	}
}

// Tick 读取一次时钟并刷新当前行，当前行变化时渲染
func (s *Scheduler) Tick() (int, bool) {
	index, changed := s.tracker.Update(s.clock.PositionMs())
	if changed {
		s.renderer.Render(s.tracker.View())
	}
	return index, changed
}

// Seek 处理一次显式跳转并立即渲染
func (s *Scheduler) Seek(playbackMs int64) int {
	index, _ := s.tracker.Seek(playbackMs)
	s.Refresh()
	return index
}

// Refresh 无条件渲染当前视图
func (s *Scheduler) Refresh() {
	s.renderer.Render(s.tracker.View())
}

// LoadNow 立即加载音轨歌词并替换当前快照，用户偏移保持不变
func (s *Scheduler) LoadNow(ctx context.Context, t *track.Track) (tracker.State, error) {
	s.reloadMutex.Lock()
	defer s.reloadMutex.Unlock()

	res, err := s.loader.Load(ctx, t)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return s.tracker.View().State, err
	}
	state := s.tracker.Load(res.Lyrics, res.Source)
	s.Refresh()
	return state, err
}

// TriggerReload 将一个音轨添加到延迟加载队列
// 防抖时间内的重复触发只会执行一次加载
func (s *Scheduler) TriggerReload(t *track.Track) {
	key := reloadKey(t)

	s.pendingReloadsMutex.Lock()
	defer s.pendingReloadsMutex.Unlock()
	// 如果这个音轨已经有一个待定的加载任务，就重置计时器
	if timer, ok := s.pendingReloads[key]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(s.cfg.ReloadDebounce, func() {
		s.performReload(t)
		// 加载完成后从队列中移除；计时器已被替换时保留新的
		s.pendingReloadsMutex.Lock()
		if s.pendingReloads[key] == timer {
			delete(s.pendingReloads, key)
		}
		s.pendingReloadsMutex.Unlock()
	})
	s.pendingReloads[key] = timer
	s.logger.Printf("Scheduled lyric reload for %s in %v", key, s.cfg.ReloadDebounce)
}

// Pending 返回尚未执行的加载任务数量
func (s *Scheduler) Pending() int {
	s.pendingReloadsMutex.Lock()
	defer s.pendingReloadsMutex.Unlock()
	return len(s.pendingReloads)
}

// Stop 取消所有待定的加载任务
func (s *Scheduler) Stop() {
	s.pendingReloadsMutex.Lock()
	defer s.pendingReloadsMutex.Unlock()
	for key, timer := range s.pendingReloads {
		timer.Stop()
		delete(s.pendingReloads, key)
	}
}

// performReload 执行实际的加载
func (s *Scheduler) performReload(t *track.Track) {
	s.logger.Printf("-> Reloading lyrics for %s", t.DisplayName())
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTPTimeout)
	defer cancel()

	state, err := s.LoadNow(ctx, t)
	if err != nil && state == tracker.StateNoLyrics {
		s.logger.Printf("Warning: reload for %s found no lyrics: %v", t.DisplayName(), err)
		return
	}
	s.logger.Printf("  -> Lyrics for %s reloaded (%s).", t.DisplayName(), state)
}

func reloadKey(t *track.Track) string {
	if t.LyricPath != "" {
		return t.LyricPath
	}
	return t.Key()
}
