package scanner

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/yleoer/lrcplayer/pkg/converter"
	"github.com/yleoer/lrcplayer/pkg/track"
	"github.com/yleoer/lrcplayer/pkg/util"
)

var (
	// "01 - 艺术家 - 标题" / "01. 标题" 前面的音轨号
	reTrackNumber = regexp.MustCompile(`^\d{1,3}\s*[-._]?\s+`)
	// "艺术家 - 标题"
	reArtistTitle = regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`)
)

// TrackScanner 负责扫描音乐目录并构建播放列表
type TrackScanner struct {
	converter converter.TextConverter
	logger    *log.Logger
}

// NewTrackScanner 创建一个新的 TrackScanner 实例
func NewTrackScanner(tc converter.TextConverter, logger *log.Logger) *TrackScanner {
	return &TrackScanner{converter: tc, logger: logger}
}

// ScanDirectory 递归扫描目录，返回按路径排序的音轨列表
// 只有歌词、没有对应音频的 .lrc 也会作为音轨返回
func (s *TrackScanner) ScanDirectory(rootPath string) ([]*track.Track, error) {
	s.logger.Printf("Scanning %s for audio and lyric files...", rootPath)

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			s.logger.Printf("Warning: Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", rootPath, err)
	}

	lyricFiles := lo.Filter(files, func(path string, _ int) bool { return util.IsLyricFile(path) })
	lyricByBase := lo.KeyBy(lyricFiles, baseKey)

	var tracks []*track.Track
	paired := make(map[string]bool)
	for _, path := range files {
		if !util.IsAudioFile(path) {
			continue
		}
		t := s.newTrack(path)
		if lrc, ok := lyricByBase[baseKey(path)]; ok {
			t.LyricPath = lrc
			paired[lrc] = true
		}
		tracks = append(tracks, t)
	}
	for _, lrc := range lyricFiles {
		if paired[lrc] {
			continue
		}
		t := s.newTrack(lrc)
		t.Path = ""
		t.LyricPath = lrc
		tracks = append(tracks, t)
	}

	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Key() < tracks[j].Key()
	})
	withLyrics := lo.CountBy(tracks, func(t *track.Track) bool { return t.LyricPath != "" })
	s.logger.Printf("  -> Found %d tracks (%d with lyric files).", len(tracks), withLyrics)
	return tracks, nil
}

// ScanFile 为单个文件构建音轨：可以是音频文件，也可以是 .lrc
func (s *TrackScanner) ScanFile(path string) (*track.Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	switch {
	case util.IsLyricFile(path):
		t := s.newTrack(path)
		t.Path = ""
		t.LyricPath = path
		return t, nil
	case util.IsAudioFile(path):
		t := s.newTrack(path)
		t.LyricPath = findSiblingLyric(path)
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func (s *TrackScanner) newTrack(path string) *track.Track {
	artist, title := parseArtistTitleFromFileName(filepath.Base(path))
	return &track.Track{
		Path:   path,
		Title:  s.converter.TradToSim(title),
		Artist: s.converter.TradToSim(artist),
	}
}

// parseArtistTitleFromFileName 从文件名解析艺术家和标题
// 示例：01 - 劉德華 - 笨小孩.flac -> Artist: 劉德華, Title: 笨小孩
func parseArtistTitleFromFileName(fileName string) (artist, title string) {
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	name = strings.TrimSpace(reTrackNumber.ReplaceAllString(name, ""))
	if matches := reArtistTitle.FindStringSubmatch(name); len(matches) > 2 {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2])
	}
	if name == "" {
		name = fileName
	}
	// 无法从文件名推断艺术家
	return track.UnknownArtist, name
}

// findSiblingLyric 查找与音频同名的 .lrc，扩展名不区分大小写
func findSiblingLyric(audioPath string) string {
	want := baseKey(audioPath)
	entries, err := os.ReadDir(filepath.Dir(audioPath))
	if err != nil {
		return ""
	}
	for _, e := range entries {
		p := filepath.Join(filepath.Dir(audioPath), e.Name())
		if !e.IsDir() && util.IsLyricFile(p) && baseKey(p) == want {
			return p
		}
	}
	return ""
}

// baseKey 去掉扩展名的完整路径，用于配对音频和歌词
func baseKey(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
