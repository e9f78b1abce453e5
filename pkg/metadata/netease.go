package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yleoer/lrcplayer/pkg/track"
)

type NeteaseSearchResult struct {
	Result struct {
		Songs []struct {
			ID      int    `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
		} `json:"songs"`
	} `json:"result"`
}

type NeteaseLyricResult struct {
	Lrc struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
}

// NeteaseClient 是 Fetcher 的网易云音乐实现
type NeteaseClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewNeteaseClient 创建一个新的 NeteaseClient 实例
func NewNeteaseClient(baseURL string, timeout time.Duration, logger *log.Logger) *NeteaseClient {
	if baseURL == "" {
		baseURL = "http://music.163.com" // Default to Netease's base URL
	}
	return &NeteaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SearchSong 搜索歌曲并返回最匹配的歌曲 ID
func (c *NeteaseClient) SearchSong(ctx context.Context, title, artist string) (int, error) {
	query := strings.TrimSpace(fmt.Sprintf("%s %s", title, artist))
	c.logger.Printf("    -> Searching online for: [%s - %s]", artist, title)

	params := url.Values{}
	params.Add("s", query)
	params.Add("type", "1") // 1 for songs
	params.Add("limit", "5")

	var result NeteaseSearchResult
	if err := c.getJSON(ctx, neteaseSearchPath, params, &result); err != nil {
		return 0, fmt.Errorf("failed to search '%s': %w", query, err)
	}
	if len(result.Result.Songs) == 0 {
		c.logger.Printf("    -> Warning: No results found for '%s'.", query)
		return 0, ErrSongNotFound
	}

	// 优先选择艺术家匹配的结果，否则选择第一个
	bestMatch := result.Result.Songs[0]
	for _, song := range result.Result.Songs {
		if artist == "" {
			break
		}
		matched := false
		for _, a := range song.Artists {
			if strings.EqualFold(a.Name, artist) {
				matched = true
				break
			}
		}
		if matched {
			bestMatch = song
			break
		}
	}
	c.logger.Printf("    -> Matched song: %s (ID: %d)", bestMatch.Name, bestMatch.ID)
	return bestMatch.ID, nil
}

// FetchLyrics 获取歌曲的 LRC 歌词
func (c *NeteaseClient) FetchLyrics(ctx context.Context, songID int) (string, error) {
	if songID == 0 {
		return "", ErrSongNotFound
	}
	params := url.Values{}
	params.Add("id", strconv.Itoa(songID))
	params.Add("lv", "1")
	params.Add("kv", "1")
	params.Add("tv", "-1")

	var lyricResult NeteaseLyricResult
	if err := c.getJSON(ctx, neteaseLyricPath, params, &lyricResult); err != nil {
		return "", fmt.Errorf("failed to get lyrics for song %d: %w", songID, err)
	}
	if strings.TrimSpace(lyricResult.Lrc.Lyric) == "" {
		return "", ErrNoOnlineLyrics
	}
	c.logger.Println("    -> Lyrics downloaded successfully.")
	return lyricResult.Lrc.Lyric, nil
}

// FetchForTrack 搜索并获取音轨的歌词，同时记录 OnlineID 和 Lyrics
func (c *NeteaseClient) FetchForTrack(ctx context.Context, t *track.Track) (string, error) {
	if t.OnlineID == 0 {
		artist := t.Artist
		if artist == track.UnknownArtist {
			artist = ""
		}
		id, err := c.SearchSong(ctx, t.Title, artist)
		if err != nil {
			return "", err
		}
		t.OnlineID = id
	}
	text, err := c.FetchLyrics(ctx, t.OnlineID)
	if err != nil {
		return "", err
	}
	t.Lyrics = text
	return text, nil
}

func (c *NeteaseClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
