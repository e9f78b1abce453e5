package metadata

import (
	"context"
	"errors"

	"github.com/yleoer/lrcplayer/pkg/track"
)

const (
	neteaseSearchPath = "/api/search/get/web"
	neteaseLyricPath  = "/api/song/lyric"
)

var (
	ErrSongNotFound   = errors.New("song not found")
	ErrNoOnlineLyrics = errors.New("no lyrics available online")
)

// Fetcher 定义在线搜索歌曲和获取歌词的接口
type Fetcher interface {
	SearchSong(ctx context.Context, title, artist string) (int, error)
	FetchLyrics(ctx context.Context, songID int) (string, error)
	FetchForTrack(ctx context.Context, t *track.Track) (string, error)
}
