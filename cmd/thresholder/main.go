// Package main runs the HSV thresholder against the synthetic camera and
// serves the tuning surface over HTTP.
package main

import (
	"context"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/slazery/kinect2-HSV-thresholder/camera"
	"github.com/slazery/kinect2-HSV-thresholder/config"
	"github.com/slazery/kinect2-HSV-thresholder/display"
	"github.com/slazery/kinect2-HSV-thresholder/pipeline"
	"github.com/slazery/kinect2-HSV-thresholder/threshold"
	"github.com/slazery/kinect2-HSV-thresholder/web"
)

var logger = golog.NewDevelopmentLogger("thresholder")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=path to a JSON5 config file"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg := config.Default()
	if argsParsed.ConfigFile != "" {
		var err error
		cfg, err = config.Read(argsParsed.ConfigFile)
		if err != nil {
			return err
		}
	}

	return runPipeline(ctx, cfg, logger)
}

func runPipeline(ctx context.Context, cfg *config.Config, logger golog.Logger) (err error) {
	src, err := camera.NewSynthetic(cfg.Camera, clock.New(), logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, src.Close())
	}()

	store := threshold.NewStore(cfg.Thresholds.Range())
	bitmap := display.NewBitmap(cfg.Camera.Width, cfg.Camera.Height)
	server := web.NewServer(store, logger)

	pl, err := pipeline.New(cfg.Intrinsics, store, bitmap, server, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.Web.BindAddress,
		Handler: server.Handler(),
	}
	utils.PanicCapturingGo(func() {
		logger.Infow("tuning surface listening", "address", cfg.Web.BindAddress)
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Errorw("tuning surface failed", "error", serveErr)
		}
	})
	defer func() {
		err = multierr.Combine(err, httpServer.Shutdown(context.Background()))
	}()

	logger.Infow("pipeline starting",
		"width", cfg.Camera.Width,
		"height", cfg.Camera.Height,
		"frame_rate", cfg.Camera.FrameRate,
	)
	loopErr := pl.Loop(ctx, src)
	if loopErr != nil && loopErr != context.Canceled {
		return loopErr
	}
	logger.Infow("pipeline stopped",
		"processed", pl.Processed(),
		"abandoned", pl.Abandoned(),
	)
	return nil
}
