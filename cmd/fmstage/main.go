package main

import (
	"context"
	"fmt"
	"os"

	"github.com/NixoN2/fmfuzz-evaluation/config"
	"github.com/NixoN2/fmfuzz-evaluation/internal/stager"
	"github.com/NixoN2/fmfuzz-evaluation/pkg/logger"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// stageArgs carries the positional CLI arguments: fmstage [buildRoot] [outputRoot].
type stageArgs struct {
	BuildRoot  string
	OutputRoot string
}

func parseArgs() stageArgs {
	args := stageArgs{BuildRoot: "build", OutputRoot: "artifact"}
	if len(os.Args) > 1 {
		args.BuildRoot = os.Args[1]
	}
	if len(os.Args) > 2 {
		args.OutputRoot = os.Args[2]
	}
	return args
}

func newStager(lg *zap.Logger) *stager.Stager {
	return stager.New(stager.DefaultConfig(), lg)
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, s *stager.Stager, args stageArgs, lg *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				summary, err := s.Stage(args.BuildRoot, args.OutputRoot)
				if err != nil {
					lg.Error("staging failed",
						zap.String("buildRoot", args.BuildRoot),
						zap.String("outputRoot", args.OutputRoot),
						zap.Error(err))
					fmt.Fprintf(os.Stderr, "fmstage: %v\n", err)
					shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				fmt.Print(summary.Report())
				shutdowner.Shutdown(fx.ExitCode(0))
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			parseArgs,         // inject CLI arguments
			config.LoadConfig, // inject config
			logger.NewLogger,  // inject logger
			newStager,         // inject artifact stager
		),
		fx.Invoke(run),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
	app.Run()
}
