package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yleoer/lrcplayer/pkg/lyrics"
	"github.com/yleoer/lrcplayer/pkg/metadata"
	"github.com/yleoer/lrcplayer/pkg/track"
)

func fetchCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "fetch <audio>",
		Short: "Download lyrics from Netease and save them next to the audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.cfg.HTTPTimeout)
			defer cancel()
			return a.runFetch(ctx, a.netease(), args[0], force, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing lyric file.")
	return cmd
}

func (a *app) runFetch(ctx context.Context, fetcher metadata.Fetcher, path string, force bool, out io.Writer) error {
	t, err := a.scanner().ScanFile(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if t.Path == "" {
		return errors.New("fetch needs an audio file")
	}

	// 沿用已配对的歌词文件（例如 Song.LRC），否则与音频同名
	target := t.LyricPath
	if target == "" {
		target = track.LyricFileFor(t.Path)
	}
	if _, err := os.Stat(target); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", target)
	}

	a.logger.Printf("Fetching lyrics for %s...", t.DisplayName())
	text, err := fetcher.FetchForTrack(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to fetch lyrics for %s: %w", t.DisplayName(), err)
	}
	parsed := lyrics.Parse(a.converter().TradToSim(text))
	if parsed.Empty() {
		return fmt.Errorf("lyrics for %s have no timestamped lines", t.DisplayName())
	}

	if err := os.WriteFile(target, []byte(lyrics.Format(parsed)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	fmt.Fprintf(out, "Saved %d lines (song id %d) to %s\n", len(parsed.Lines), t.OnlineID, target)
	return nil
}
