package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yleoer/lrcplayer/pkg/clock"
	"github.com/yleoer/lrcplayer/pkg/database"
	"github.com/yleoer/lrcplayer/pkg/display"
	"github.com/yleoer/lrcplayer/pkg/processor"
	"github.com/yleoer/lrcplayer/pkg/scheduler"
	"github.com/yleoer/lrcplayer/pkg/tracker"
	"github.com/yleoer/lrcplayer/pkg/watcher"
)

type playParams struct {
	Start     time.Duration
	Offset    int64
	HasOffset bool
	Tail      time.Duration
	Rate      float64
}

func playCmd(a *app) *cobra.Command {
	p := &playParams{}
	cmd := &cobra.Command{
		Use:   "play <audio|lrc>",
		Short: "Follow the lyrics of a track on a software clock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.HasOffset = cmd.Flags().Changed("offset")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runPlay(ctx, args[0], p, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&p.Start, "start", 0, "Start playback at this position.")
	cmd.Flags().Int64Var(&p.Offset, "offset", 0, "User offset in milliseconds, overrides the saved one.")
	cmd.Flags().DurationVar(&p.Tail, "tail", 3*time.Second, "When the track length is unknown: how long to keep the last line on screen, or to wait for lyrics that never arrive.")
	cmd.Flags().Float64Var(&p.Rate, "rate", 1, "Playback rate.")
	return cmd
}

func (a *app) runPlay(ctx context.Context, path string, p *playParams, out io.Writer) error {
	t, err := a.scanner().ScanFile(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	tr := tracker.New(a.cfg.JitterTolerance.Milliseconds())
	if p.HasOffset {
		tr.SetUserOffset(p.Offset)
	} else if store, err := database.NewSQLiteStore(a.cfg.DBPath, a.logger); err != nil {
		a.logger.Printf("Warning: saved offsets unavailable: %v", err)
	} else {
		if ms, ok, err := store.TrackOffset(t.Key()); err != nil {
			a.logger.Printf("Warning: failed to read saved offset for %s: %v", t.Key(), err)
		} else if ok {
			a.logger.Printf("Restored user offset %+dms for %s.", ms, t.DisplayName())
			tr.SetUserOffset(ms)
		}
		store.Close()
	}

	// 一次 ffprobe 同时得到时长和内嵌歌词，加载和重新加载都复用这次结果
	probed := processor.ProbedFile{Processor: processor.NewFFprobeProcessor(a.cfg.FFprobePath, a.logger), Path: t.Path}
	clk := clock.NewSoftClock(nil)
	durationKnown := false
	if t.Path != "" {
		if res, err := probed.Processor.Probe(ctx, t.Path); err != nil {
			a.logger.Printf("Warning: track length unknown: %v", err)
		} else {
			probed.Result = res
			if res.Duration > 0 {
				clk.SetDuration(res.Duration)
				durationKnown = true
			}
		}
	}

	renderer := display.NewTerminalRenderer(out, a.cfg.ContextLines)
	sched := scheduler.NewScheduler(a.cfg, clk, tr, a.loader(probed), renderer, a.logger)

	// 跳转要在加载之前完成，加载后按起始位置定位一次
	clk.Seek(p.Start.Milliseconds())
	tr.Seek(clk.PositionMs())
	if state, err := sched.LoadNow(ctx, t); err != nil {
		a.logger.Printf("Warning: %s has no lyrics yet (%s): %v", t.DisplayName(), state, err)
	}

	w, err := watcher.NewLyricWatcher(sched, a.logger)
	if err != nil {
		a.logger.Printf("Warning: lyric file changes will not be picked up: %v", err)
	} else {
		defer w.Close()
		if err := w.Watch(t); err != nil {
			a.logger.Printf("Warning: %v", err)
		}
		go w.Run(ctx)
	}

	clk.SetRate(p.Rate)
	clk.Play()
	startMs := clk.PositionMs()
	sched.StopWhen(func() bool {
		return playbackDone(durationKnown, clk.Finished(), clk.PositionMs()-startMs, tr.View(), p.Tail)
	})
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// playbackDone 时长已知时播放到结尾即结束；否则最后一行显示满 tail 后结束，
// 没有歌词时播放满 tail 后结束
func playbackDone(durationKnown, clockFinished bool, playedMs int64, v tracker.View, tail time.Duration) bool {
	if durationKnown {
		return clockFinished
	}
	if len(v.Lines) == 0 {
		return playedMs >= tail.Milliseconds()
	}
	if v.Index != len(v.Lines)-1 {
		return false
	}
	return v.EffectiveMs-v.Lines[v.Index].TimeMs >= tail.Milliseconds()
}
