package scanner

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/yleoer/lrcplayer/pkg/converter"
	"github.com/yleoer/lrcplayer/pkg/track"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func newScanner() *TrackScanner {
	return NewTrackScanner(converter.Passthrough{}, log.New(io.Discard, "", 0))
}

func TestParseArtistTitleFromFileName(t *testing.T) {
	tests := []struct {
		fileName   string
		wantArtist string
		wantTitle  string
	}{
		{"Artist - Title.mp3", "Artist", "Title"},
		{"01 - Artist - Title.flac", "Artist", "Title"},
		{"03. Just A Title.flac", track.UnknownArtist, "Just A Title"},
		{"Title.lrc", track.UnknownArtist, "Title"},
		{"AC-DC - Back In Black.mp3", "AC-DC", "Back In Black"},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			artist, title := parseArtistTitleFromFileName(tt.fileName)
			if artist != tt.wantArtist || title != tt.wantTitle {
				t.Errorf("parseArtistTitleFromFileName(%q) = (%q, %q), want (%q, %q)",
					tt.fileName, artist, title, tt.wantArtist, tt.wantTitle)
			}
		})
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"a/Artist - One.mp3",
		"a/Artist - One.lrc",
		"a/Artist - Two.flac",
		"b/Only Lyrics.lrc",
		"b/cover.jpg",
	)

	tracks, err := newScanner().ScanDirectory(root)
	if err != nil {
		t.Fatalf("ScanDirectory error: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("ScanDirectory returned %d tracks, want 3: %+v", len(tracks), tracks)
	}

	one, two, only := tracks[0], tracks[1], tracks[2]
	if one.Title != "One" || one.LyricPath != filepath.Join(root, "a/Artist - One.lrc") {
		t.Errorf("track one = %+v", one)
	}
	if two.Title != "Two" || two.LyricPath != "" {
		t.Errorf("track two = %+v", two)
	}
	if only.Path != "" || only.LyricPath != filepath.Join(root, "b/Only Lyrics.lrc") || only.Title != "Only Lyrics" {
		t.Errorf("lyric-only track = %+v", only)
	}
}

func TestScanFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "Song.ogg", "Song.LRC", "notes.txt")
	s := newScanner()

	tr, err := s.ScanFile(filepath.Join(root, "Song.ogg"))
	if err != nil {
		t.Fatalf("ScanFile(audio) error: %v", err)
	}
	if tr.LyricPath != filepath.Join(root, "Song.LRC") {
		t.Errorf("ScanFile(audio).LyricPath = %q", tr.LyricPath)
	}

	tr, err = s.ScanFile(filepath.Join(root, "Song.LRC"))
	if err != nil || tr.Path != "" || tr.LyricPath == "" {
		t.Errorf("ScanFile(lrc) = (%+v, %v)", tr, err)
	}

	if _, err := s.ScanFile(filepath.Join(root, "notes.txt")); err == nil {
		t.Errorf("ScanFile(txt) expected error")
	}
	if _, err := s.ScanFile(filepath.Join(root, "missing.mp3")); err == nil {
		t.Errorf("ScanFile(missing) expected error")
	}
	if _, err := s.ScanFile(root); err == nil {
		t.Errorf("ScanFile(dir) expected error")
	}
}

func TestScanDirectoryMissingRoot(t *testing.T) {
	if _, err := newScanner().ScanDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Errorf("ScanDirectory on missing root expected error")
	}
}
