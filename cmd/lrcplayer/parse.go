package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yleoer/lrcplayer/pkg/lyrics"
	"github.com/yleoer/lrcplayer/pkg/util"
)

func parseCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "parse <lrc>",
		Short: "Parse an LRC file and print the normalized result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(args[0], asJSON, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of LRC.")
	return cmd
}

func (a *app) runParse(path string, asJSON bool, out io.Writer) error {
	text, err := util.ReadTextFileContent(path)
	if err != nil {
		return err
	}
	parsed := lyrics.Parse(a.converter().TradToSim(text))
	if parsed.Empty() {
		a.logger.Printf("Warning: %s has no timestamped lines.", path)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(parsed); err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		return nil
	}
	_, err = io.WriteString(out, lyrics.Format(parsed))
	return err
}
