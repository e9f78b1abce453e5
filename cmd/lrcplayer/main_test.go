package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yleoer/lrcplayer/pkg/config"
	"github.com/yleoer/lrcplayer/pkg/lyrics"
	"github.com/yleoer/lrcplayer/pkg/track"
	"github.com/yleoer/lrcplayer/pkg/tracker"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	return &app{
		logger: log.New(io.Discard, "", 0),
		cfg: &config.Config{
			DataDir:        dir,
			DBPath:         filepath.Join(dir, "test.db"),
			TickInterval:   10 * time.Millisecond,
			ReloadDebounce: 10 * time.Millisecond,
			HTTPTimeout:    time.Second,
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPlaybackDone(t *testing.T) {
	lines := []lyrics.Line{{TimeMs: 1000, Text: "a"}, {TimeMs: 5000, Text: "b"}}
	tests := []struct {
		name          string
		durationKnown bool
		finished      bool
		playedMs      int64
		view          tracker.View
		want          bool
	}{
		{"known duration running", true, false, 60000, tracker.View{Lines: lines, Index: 1, EffectiveMs: 60000}, false},
		{"known duration finished", true, true, 6000, tracker.View{Lines: lines, Index: 1, EffectiveMs: 6000}, true},
		{"known duration no lyrics", true, false, 60000, tracker.View{Index: lyrics.NoLine}, false},
		{"no lyrics within tail", false, false, 2000, tracker.View{Index: lyrics.NoLine, EffectiveMs: 62000}, false},
		{"no lyrics past tail", false, false, 3000, tracker.View{Index: lyrics.NoLine, EffectiveMs: 3000}, true},
		{"before last line", false, false, 4000, tracker.View{Lines: lines, Index: 0, EffectiveMs: 4000}, false},
		{"last line within tail", false, false, 6000, tracker.View{Lines: lines, Index: 1, EffectiveMs: 6000}, false},
		{"last line past tail", false, false, 8000, tracker.View{Lines: lines, Index: 1, EffectiveMs: 8000}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := playbackDone(tt.durationKnown, tt.finished, tt.playedMs, tt.view, 3*time.Second); got != tt.want {
				t.Errorf("playbackDone = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunParse(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "song.lrc")
	writeFile(t, path, "[ti:Song]\n[offset:-100]\n[00:02.5]b\n[00:01]a\n")

	var out bytes.Buffer
	if err := a.runParse(path, false, &out); err != nil {
		t.Fatalf("runParse error: %v", err)
	}
	want := "[offset:-100]\n[ti:Song]\n[00:01.000]a\n[00:02.500]b\n"
	if out.String() != want {
		t.Errorf("runParse output = %q, want %q", out.String(), want)
	}

	out.Reset()
	if err := a.runParse(path, true, &out); err != nil {
		t.Fatalf("runParse --json error: %v", err)
	}
	var parsed lyrics.Parsed
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if parsed.OffsetMs != -100 || len(parsed.Lines) != 2 || parsed.Lines[1].TimeMs != 2500 {
		t.Errorf("decoded = %+v", parsed)
	}

	if err := a.runParse(filepath.Join(t.TempDir(), "missing.lrc"), false, &out); err == nil {
		t.Errorf("runParse on missing file expected error")
	}
}

func TestRunScan(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Artist - One.mp3"), "x")
	writeFile(t, filepath.Join(dir, "Artist - One.lrc"), "[00:01]a")
	writeFile(t, filepath.Join(dir, "Artist - Two.mp3"), "x")

	var out bytes.Buffer
	if err := a.runScan(dir, &out); err != nil {
		t.Fatalf("runScan error: %v", err)
	}
	for _, want := range []string{"Artist - One", "Artist - Two.mp3", "2 tracks, 1 with lyrics"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("runScan output missing %q:\n%s", want, out.String())
		}
	}

	if err := a.runScan(filepath.Join(dir, "Artist - One.mp3"), io.Discard); err == nil {
		t.Errorf("runScan on a file expected error")
	}
}

func TestRunOffset(t *testing.T) {
	a := newTestApp(t)
	audio := filepath.Join(t.TempDir(), "Song.mp3")
	writeFile(t, audio, "x")

	steps := []struct {
		value string
		clear bool
		want  string
	}{
		{"", false, "no saved offset"},
		{"+250", false, "offset +250ms"},
		{"", false, "offset +250ms"},
		{"-40", false, "offset -40ms"},
		{"", true, "offset cleared"},
		{"", false, "no saved offset"},
	}
	for _, step := range steps {
		var out bytes.Buffer
		if err := a.runOffset(audio, step.value, step.clear, &out); err != nil {
			t.Fatalf("runOffset(%q, %v) error: %v", step.value, step.clear, err)
		}
		if !strings.Contains(out.String(), step.want) {
			t.Errorf("runOffset(%q, %v) = %q, want %q", step.value, step.clear, out.String(), step.want)
		}
	}

	if err := a.runOffset(audio, "abc", false, io.Discard); err == nil {
		t.Errorf("runOffset with invalid value expected error")
	}
}

type stubFetcher struct{ text string }

func (f stubFetcher) SearchSong(context.Context, string, string) (int, error) { return 42, nil }

func (f stubFetcher) FetchLyrics(context.Context, int) (string, error) { return f.text, nil }

func (f stubFetcher) FetchForTrack(_ context.Context, t *track.Track) (string, error) {
	t.OnlineID = 42
	t.Lyrics = f.text
	return f.text, nil
}

func TestRunFetch(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	audio := filepath.Join(dir, "Artist - Song.flac")
	writeFile(t, audio, "x")

	var out bytes.Buffer
	err := a.runFetch(context.Background(), stubFetcher{text: "[00:01.00]hello"}, audio, false, &out)
	if err != nil {
		t.Fatalf("runFetch error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Artist - Song.lrc"))
	if err != nil {
		t.Fatalf("lyric file not written: %v", err)
	}
	if string(data) != "[00:01.000]hello\n" {
		t.Errorf("saved lyrics = %q", data)
	}

	if err := a.runFetch(context.Background(), stubFetcher{text: "[00:01]x"}, audio, false, io.Discard); err == nil {
		t.Errorf("runFetch over an existing file expected error")
	}
	if err := a.runFetch(context.Background(), stubFetcher{text: "[00:01]x"}, audio, true, io.Discard); err != nil {
		t.Errorf("runFetch --force error: %v", err)
	}
	if err := a.runFetch(context.Background(), stubFetcher{text: "plain text"}, audio, true, io.Discard); err == nil {
		t.Errorf("runFetch with untimed lyrics expected error")
	}
}

func TestRunFetchPairsWithAudio(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()

	for _, name := range []string{"Artist - Song?.flac", "Artist - Re: Mix*.mp3"} {
		audio := filepath.Join(dir, name)
		writeFile(t, audio, "x")
		if err := a.runFetch(context.Background(), stubFetcher{text: "[00:01]a"}, audio, false, io.Discard); err != nil {
			t.Fatalf("runFetch(%q) error: %v", name, err)
		}
		tr, err := a.scanner().ScanFile(audio)
		if err != nil {
			t.Fatal(err)
		}
		if want := track.LyricFileFor(audio); tr.LyricPath != want {
			t.Errorf("lyric path after fetching %q = %q, want %q", name, tr.LyricPath, want)
		}
	}

	// 已配对的歌词文件被沿用，不会再生成一个同名的 .lrc
	audio := filepath.Join(dir, "Upper.mp3")
	upper := filepath.Join(dir, "Upper.LRC")
	writeFile(t, audio, "x")
	writeFile(t, upper, "[00:01]old")
	if err := a.runFetch(context.Background(), stubFetcher{text: "[00:01]new"}, audio, true, io.Discard); err != nil {
		t.Fatalf("runFetch error: %v", err)
	}
	data, err := os.ReadFile(upper)
	if err != nil || string(data) != "[00:01.000]new\n" {
		t.Errorf("paired lyric file = (%q, %v)", data, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() == "Upper.lrc" {
			t.Errorf("a second lyric file was written next to Upper.LRC")
		}
	}
}
