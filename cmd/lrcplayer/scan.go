package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/yleoer/lrcplayer/pkg/track"
	"github.com/yleoer/lrcplayer/pkg/util"
)

func scanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [dir]",
		Short: "List tracks and whether a lyric file was found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.MusicDir
			if len(args) == 1 {
				dir = args[0]
			}
			return a.runScan(dir, cmd.OutOrStdout())
		},
	}
}

func (a *app) runScan(dir string, out io.Writer) error {
	if !util.IsDirectory(dir) {
		return fmt.Errorf("%s is not a directory", dir)
	}
	tracks, err := a.scanner().ScanDirectory(dir)
	if err != nil {
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TRACK", "AUDIO", "LYRICS")
	for _, tr := range tracks {
		t.Row(tr.DisplayName(), relOrDash(dir, tr.Path), relOrDash(dir, tr.LyricPath))
	}
	withLyrics := lo.CountBy(tracks, func(tr *track.Track) bool { return tr.LyricPath != "" })

	fmt.Fprintln(out, t.Render())
	fmt.Fprintf(out, "%d tracks, %d with lyrics\n", len(tracks), withLyrics)
	return nil
}

func relOrDash(root, path string) string {
	if path == "" {
		return "-"
	}
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
