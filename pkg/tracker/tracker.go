package tracker

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/yleoer/lrcplayer/pkg/lyrics"
)

var ErrIndexOutOfRange = errors.New("line index out of range")

// State 是一次播放会话中歌词同步的状态
type State int

const (
	StateNoLyrics State = iota // 没有可用歌词
	StateTracking              // 正在跟随播放时间
)

func (s State) String() string {
	switch s {
	case StateTracking:
		return "tracking"
	default:
		return "no-lyrics"
	}
}

// snapshot 是当前歌词集合的不可变快照，整体替换，从不原地修改
type snapshot struct {
	lyrics lyrics.Parsed
	source string
}

// View 是调用方看到的一致状态
type View struct {
	State        State
	Lines        []lyrics.Line
	Index        int
	FileOffsetMs int64
	UserOffsetMs int64
	EffectiveMs  int64
	Source       string
	Tags         map[string]string
}

// Active 返回当前行，没有时 ok 为 false
func (v View) Active() (lyrics.Line, bool) {
	if v.Index < 0 || v.Index >= len(v.Lines) {
		return lyrics.Line{}, false
	}
	return v.Lines[v.Index], true
}

// Tracker 持有当前歌词快照、用户偏移和当前行下标
// 歌词快照通过 atomic.Pointer 整体替换，查询中途永远不会看到替换了一半的序列
type Tracker struct {
	current    atomic.Pointer[snapshot]
	userOffset atomic.Int64

	mu              sync.Mutex // 保护下面的跟踪状态
	index           int
	lastPlaybackMs  int64
	peakPlaybackMs  int64 // 上次 Seek 以来的最大播放时间
	lastEffectiveMs int64
	jitterTolerance int64
}

// New 创建 Tracker；jitterToleranceMs 是无 Seek 时允许忽略的时钟回退量
func New(jitterToleranceMs int64) *Tracker {
	t := &Tracker{index: lyrics.NoLine, jitterTolerance: jitterToleranceMs}
	t.current.Store(&snapshot{})
	return t
}

// Load 整体替换当前歌词：下标先回到 NoLine，发布新快照后按上次的播放时间重新定位
// 返回新的状态
func (t *Tracker) Load(parsed lyrics.Parsed, source string) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.index = lyrics.NoLine
	t.current.Store(&snapshot{lyrics: parsed, source: source})
	if parsed.Empty() {
		return StateNoLyrics
	}
	t.index = t.resolve(t.lastPlaybackMs)
	return StateTracking
}

// Clear 卸载歌词
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current.Store(&snapshot{})
	t.index = lyrics.NoLine
}

// Update 用时钟的新读数刷新当前行，返回当前下标以及是否发生变化
// 没有 Seek 时，小于容差的时钟回退不会让当前行后退
func (t *Tracker) Update(playbackMs int64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, prevEffectiveMs := t.index, t.lastEffectiveMs
	regression := t.peakPlaybackMs - playbackMs
	t.lastPlaybackMs = playbackMs
	if playbackMs > t.peakPlaybackMs {
		t.peakPlaybackMs = playbackMs
	}
	next := t.resolve(playbackMs)
	if next < prev && regression > 0 && regression <= t.jitterTolerance {
		// 当前行保持不动，显示的时间也保持在抖动之前
		t.lastEffectiveMs = prevEffectiveMs
		return prev, false
	}
	t.index = next
	return next, next != prev
}

// Seek 处理显式的跳转，可以向前也可以向后
func (t *Tracker) Seek(playbackMs int64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.index
	t.lastPlaybackMs = playbackMs
	t.peakPlaybackMs = playbackMs
	t.index = t.resolve(playbackMs)
	return t.index, t.index != prev
}

// SeekToLine 返回让第 i 行成为当前行的播放时间（不小于 0），并按该时间执行 Seek
func (t *Tracker) SeekToLine(i int) (int64, error) {
	snap := t.current.Load()
	lines := snap.lyrics.Lines
	if i < 0 || i >= len(lines) {
		return 0, ErrIndexOutOfRange
	}
	playbackMs := lines[i].TimeMs - snap.lyrics.OffsetMs - t.userOffset.Load()
	if playbackMs < 0 {
		playbackMs = 0
	}
	t.Seek(playbackMs)
	return playbackMs, nil
}

// SetUserOffset 设置用户偏移并立即重新定位
func (t *Tracker) SetUserOffset(ms int64) {
	t.userOffset.Store(ms)
	t.reresolve()
}

// AdjustUserOffset 在当前用户偏移上增加 delta，返回新的偏移
func (t *Tracker) AdjustUserOffset(delta int64) int64 {
	v := t.userOffset.Add(delta)
	t.reresolve()
	return v
}

// UserOffset 返回当前用户偏移
func (t *Tracker) UserOffset() int64 {
	return t.userOffset.Load()
}

// Lyrics 返回当前歌词快照
func (t *Tracker) Lyrics() lyrics.Parsed {
	return t.current.Load().lyrics
}

// View 返回一致的状态视图
func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.current.Load()
	state := StateNoLyrics
	if !snap.lyrics.Empty() {
		state = StateTracking
	}
	return View{
		State:        state,
		Lines:        snap.lyrics.Lines,
		Index:        t.index,
		FileOffsetMs: snap.lyrics.OffsetMs,
		UserOffsetMs: t.userOffset.Load(),
		EffectiveMs:  t.lastEffectiveMs,
		Source:       snap.source,
		Tags:         snap.lyrics.Tags,
	}
}

// reresolve 偏移变化相当于一次跳转
func (t *Tracker) reresolve() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.index = t.resolve(t.lastPlaybackMs)
}

// resolve 必须在持有 mu 时调用
func (t *Tracker) resolve(playbackMs int64) int {
	snap := t.current.Load()
	t.lastEffectiveMs = lyrics.EffectiveTime(playbackMs, snap.lyrics.OffsetMs, t.userOffset.Load())
	return lyrics.StableIndex(snap.lyrics.Lines, t.lastEffectiveMs)
}
