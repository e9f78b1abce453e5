package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/yleoer/lrcplayer/pkg/config"
	"github.com/yleoer/lrcplayer/pkg/converter"
	"github.com/yleoer/lrcplayer/pkg/loader"
	"github.com/yleoer/lrcplayer/pkg/metadata"
	"github.com/yleoer/lrcplayer/pkg/scanner"
)

// app 保存各个子命令共用的依赖
type app struct {
	logger *log.Logger
	cfg    *config.Config
	quiet  bool
}

func main() {
	// 日志写到 stderr，stdout 留给歌词输出
	logger := log.New(os.Stderr, "[lrcplayer] ", log.LstdFlags|log.Lshortfile)
	a := &app{logger: logger}
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "lrcplayer",
		Short:        "Show LRC lyrics in sync with a playing track",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.quiet {
				a.logger.SetOutput(io.Discard)
			}
			if a.cfg != nil {
				return nil
			}
			cfg, err := config.LoadConfig(a.logger)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress log output.")
	root.AddCommand(
		playCmd(a),
		parseCmd(a),
		scanCmd(a),
		offsetCmd(a),
		fetchCmd(a),
	)
	return root
}

func (a *app) converter() converter.TextConverter {
	return converter.New(a.cfg.ConvertT2S, a.logger)
}

func (a *app) scanner() *scanner.TrackScanner {
	return scanner.NewTrackScanner(a.converter(), a.logger)
}

func (a *app) netease() *metadata.NeteaseClient {
	return metadata.NewNeteaseClient(a.cfg.NeteaseAPI, a.cfg.HTTPTimeout, a.logger)
}

// loader 按 文件 -> 内嵌标签 -> 网易云 的顺序获取歌词；在线获取需要 FETCH_ONLINE
func (a *app) loader(embedded loader.EmbeddedReader) *loader.Loader {
	sources := []loader.Source{
		loader.FileSource{},
		loader.EmbeddedSource{Reader: embedded},
	}
	if a.cfg.FetchOnline {
		sources = append(sources, loader.OnlineSource{Fetcher: a.netease()})
	}
	return loader.NewLoader(a.converter(), a.logger, sources...)
}
