package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"eventcal/internal/config"
	"eventcal/internal/feed"
	appLog "eventcal/internal/log"
	"eventcal/internal/pipeline"
	"eventcal/internal/render"
	"eventcal/internal/report"
	"eventcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	dump       bool
	debug      bool
}

func main() {
	appLog.Info("eventcal starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides the config file if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"feed_url", conf.FeedURL,
		"feed_format", conf.FeedFormat,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"widget_count", len(conf.Widgets),
		"once", flags.once,
	)

	pipe := buildPipeline(conf)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if err := renderWidgets(ctx, conf, pipe, flags.dump); err != nil {
			os.Exit(1)
		}
		return
	}

	// Periodic snapshot refresh for widgets with an output file.
	if conf.RefreshCron != "" && hasSnapshotWidgets(conf) {
		c := cron.New()
		if _, err := c.AddFunc(conf.RefreshCron, func() {
			if err := renderWidgets(ctx, conf, pipe, false); err != nil {
				appLog.Error("scheduled render failed", err)
			}
		}); err != nil {
			appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
	}

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, pipe).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		srv.Shutdown(shutCtx)
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	appLog.Info("eventcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/eventcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Render all configured widgets once and exit")
	flag.BoolVar(&cfg.dump, "dump", false, "With -once: print text previews instead of fragments")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

func buildPipeline(conf *config.Config) *pipeline.Pipeline {
	var rep report.Reporter = report.LogReporter{}
	if conf.ReportURL != "" {
		rep = report.NewHTTPReporter(conf.ReportURL)
	}
	fetcher := feed.NewFetcher(&http.Client{})
	return pipeline.New(conf.FeedURL, conf.FeedFormat, conf.Location(), fetcher, rep)
}

func hasSnapshotWidgets(conf *config.Config) bool {
	for _, w := range conf.Widgets {
		if w.Out != "" {
			return true
		}
	}
	return false
}

// renderWidgets processes every configured widget sequentially. Widgets
// with an output file get their fragment written there; the rest go to
// stdout. Failures are collected so one widget cannot block the others.
func renderWidgets(ctx context.Context, conf *config.Config, pipe *pipeline.Pipeline, dump bool) error {
	var lastErr error
	for _, w := range conf.Widgets {
		el := pipeline.WidgetElement(w)

		if dump {
			q := pipeline.ParseQuery(el.Attr, pipe.Loc)
			events, err := pipe.SelectEvents(ctx, q)
			if err != nil {
				lastErr = err
				continue
			}
			fmt.Printf("== %s\n%s", w.ID, render.Preview(events, pipe.Formatter.Style, q.ShowYear))
			continue
		}

		if err := pipe.RunOne(ctx, el); err != nil {
			lastErr = err
			continue
		}

		if w.Out != "" {
			if err := os.WriteFile(w.Out, []byte(el.Content), 0o644); err != nil {
				appLog.Error("failed to write widget output", err, "id", w.ID, "out", w.Out)
				lastErr = err
			}
			continue
		}
		fmt.Printf("== %s\n%s\n", w.ID, el.Content)
	}
	return lastErr
}
