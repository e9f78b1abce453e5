package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/yleoer/lrcplayer/pkg/track"
	"github.com/yleoer/lrcplayer/pkg/util"
)

// Reloader 由 scheduler.Scheduler 实现
type Reloader interface {
	TriggerReload(t *track.Track)
}

// LyricWatcher 监听歌词文件所在目录，歌词文件变化时触发重新加载
// fsnotify 只能可靠地监听目录，所以监听的是目录，再按文件名过滤事件
type LyricWatcher struct {
	watcher  *fsnotify.Watcher
	reloader Reloader
	logger   *log.Logger

	mu      sync.Mutex
	watched map[string]*track.Track // watchKey -> track
	dirs    map[string]bool
}

// NewLyricWatcher 创建一个新的 LyricWatcher 实例
func NewLyricWatcher(reloader Reloader, logger *log.Logger) (*LyricWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &LyricWatcher{
		watcher:  w,
		reloader: reloader,
		logger:   logger,
		watched:  make(map[string]*track.Track),
		dirs:     make(map[string]bool),
	}, nil
}

// Watch 开始监听音轨的歌词文件
// 还没有歌词文件的音轨监听音频旁边预期的 .lrc 位置，文件出现后即可加载
func (w *LyricWatcher) Watch(t *track.Track) error {
	lyricPath := t.LyricPath
	if lyricPath == "" {
		if t.Path == "" {
			return fmt.Errorf("track %q has no file to watch", t.DisplayName())
		}
		lyricPath = track.LyricFileFor(t.Path)
	}
	dir := filepath.Dir(filepath.Clean(lyricPath))

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.watched[watchKey(lyricPath)] = t
	w.logger.Printf("Watching %s for lyric changes.", lyricPath)
	return nil
}

// Run 处理文件系统事件，直到 ctx 结束或监听器被关闭
func (w *LyricWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("ERROR: Watcher error: %v", err)
		}
	}
}

// Close 关闭底层监听器
func (w *LyricWatcher) Close() error {
	return w.watcher.Close()
}

func (w *LyricWatcher) handleEvent(event fsnotify.Event) {
	w.mu.Lock()
	t, ok := matchEvent(event, w.watched)
	if ok && t.LyricPath != event.Name && event.Has(fsnotify.Create) {
		// 新出现的歌词文件（或大小写不同的同名文件）成为该音轨的歌词路径
		updated := *t
		updated.LyricPath = event.Name
		w.watched[watchKey(event.Name)] = &updated
		t = &updated
	}
	w.mu.Unlock()

	if !ok {
		return
	}
	w.logger.Printf("Watcher event: %s, on %s", event.Op.String(), event.Name)
	w.reloader.TriggerReload(t)
}

// matchEvent 判断事件是否需要重新加载，返回对应的音轨
func matchEvent(event fsnotify.Event, watched map[string]*track.Track) (*track.Track, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return nil, false
	}
	if !util.IsLyricFile(event.Name) {
		return nil, false
	}
	t, ok := watched[watchKey(event.Name)]
	return t, ok
}

// watchKey 忽略扩展名大小写和目录写法的差异
func watchKey(lyricPath string) string {
	p := filepath.Clean(lyricPath)
	return strings.TrimSuffix(p, filepath.Ext(p)) + strings.ToLower(filepath.Ext(p))
}
