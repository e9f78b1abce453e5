package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yleoer/lrcplayer/pkg/database"
)

func offsetCmd(a *app) *cobra.Command {
	var clearOffset bool
	cmd := &cobra.Command{
		Use:   "offset <audio|lrc> [ms]",
		Short: "Show, save or clear the user offset of a track",
		Long:  "Show, save or clear the user offset of a track. Negative values need a preceding --, e.g. lrcplayer offset song.mp3 -- -250.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			return a.runOffset(args[0], value, clearOffset, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&clearOffset, "clear", false, "Remove the saved offset.")
	return cmd
}

// runOffset value 为空时只显示当前保存的偏移
func (a *app) runOffset(path, value string, clearOffset bool, out io.Writer) error {
	t, err := a.scanner().ScanFile(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	store, err := database.NewSQLiteStore(a.cfg.DBPath, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	key := t.Key()
	switch {
	case clearOffset:
		if err := store.DeleteTrackOffset(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: offset cleared\n", t.DisplayName())
	case value != "":
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid offset %q: %w", value, err)
		}
		if err := store.SetTrackOffset(key, ms); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: offset %+dms\n", t.DisplayName(), ms)
	default:
		ms, ok, err := store.TrackOffset(key)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "%s: no saved offset\n", t.DisplayName())
			return nil
		}
		fmt.Fprintf(out, "%s: offset %+dms\n", t.DisplayName(), ms)
	}
	return nil
}
