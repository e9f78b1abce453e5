package loader

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/yleoer/lrcplayer/pkg/converter"
	"github.com/yleoer/lrcplayer/pkg/track"
)

type stubSource struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lyrics(context.Context, *track.Track) (string, error) {
	s.calls++
	return s.text, s.err
}

type markingConverter struct{}

func (markingConverter) TradToSim(text string) string { return text + "!" }

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestLoaderFallsThroughSources(t *testing.T) {
	failing := &stubSource{name: "broken", err: errors.New("boom")}
	empty := &stubSource{name: "empty", text: "   "}
	untimed := &stubSource{name: "plain", text: "just words\nno tags"}
	good := &stubSource{name: "good", text: "[00:01]a\n[00:02]b"}
	never := &stubSource{name: "never", text: "[00:09]z"}

	l := NewLoader(converter.Passthrough{}, quietLogger(), failing, nil, empty, untimed, good, never)
	res, err := l.Load(context.Background(), &track.Track{Title: "t"})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if res.Source != "good" || len(res.Lyrics.Lines) != 2 {
		t.Errorf("Load = %+v, want 2 lines from good", res)
	}
	if never.calls != 0 {
		t.Errorf("sources after the first success should not be called")
	}
}

func TestLoaderNoLyrics(t *testing.T) {
	l := NewLoader(converter.Passthrough{}, quietLogger(), &stubSource{name: "broken", err: errors.New("boom")})
	res, err := l.Load(context.Background(), &track.Track{Title: "t"})
	if !errors.Is(err, ErrNoLyricsFound) {
		t.Fatalf("Load error = %v, want %v", err, ErrNoLyricsFound)
	}
	if !res.Lyrics.Empty() || res.Lyrics.OffsetMs != 0 || res.Source != "" {
		t.Errorf("Load without lyrics = %+v, want empty result", res)
	}

	// 没有任何来源时同样是空歌词
	res, err = NewLoader(converter.Passthrough{}, quietLogger()).Load(context.Background(), &track.Track{})
	if !errors.Is(err, ErrNoLyricsFound) || !res.Lyrics.Empty() {
		t.Errorf("Load with no sources = (%+v, %v)", res, err)
	}
}

func TestLoaderCancelledContext(t *testing.T) {
	src := &stubSource{name: "good", text: "[00:01]a"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(converter.Passthrough{}, quietLogger(), src).Load(ctx, &track.Track{})
	if !errors.Is(err, context.Canceled) || src.calls != 0 {
		t.Errorf("Load with cancelled context = %v after %d calls", err, src.calls)
	}
}

func TestLoaderAppliesConverter(t *testing.T) {
	src := &stubSource{name: "good", text: "[00:01]a"}
	res, err := NewLoader(markingConverter{}, quietLogger(), src).Load(context.Background(), &track.Track{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Lyrics.Lines[0].Text != "a!" {
		t.Errorf("converted text = %q, want %q", res.Lyrics.Lines[0].Text, "a!")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.lrc")
	if err := os.WriteFile(path, []byte("[offset:100]\n[00:01]a"), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(converter.Passthrough{}, quietLogger(), FileSource{})
	res, err := l.Load(context.Background(), &track.Track{LyricPath: path})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if res.Source != "file" || res.Lyrics.OffsetMs != 100 || len(res.Lyrics.Lines) != 1 {
		t.Errorf("Load = %+v", res)
	}

	if _, err := (FileSource{}).Lyrics(context.Background(), &track.Track{}); err == nil {
		t.Errorf("FileSource without lyric path expected error")
	}
}

type stubEmbedded struct{ text string }

func (s stubEmbedded) EmbeddedLyrics(context.Context, string) (string, error) { return s.text, nil }

func TestEmbeddedSource(t *testing.T) {
	src := EmbeddedSource{Reader: stubEmbedded{text: "[00:01]x"}}
	if _, err := src.Lyrics(context.Background(), &track.Track{LyricPath: "a.lrc"}); err == nil {
		t.Errorf("EmbeddedSource without audio path expected error")
	}
	text, err := src.Lyrics(context.Background(), &track.Track{Path: "a.flac"})
	if err != nil || text != "[00:01]x" {
		t.Errorf("EmbeddedSource.Lyrics = (%q, %v)", text, err)
	}
}
