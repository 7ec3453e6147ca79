package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/vladislavdragonenkov/salesconsole/internal/api"
	"github.com/vladislavdragonenkov/salesconsole/internal/console"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/guard"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/notice"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/query"
	"github.com/vladislavdragonenkov/salesconsole/internal/console/session"
	"github.com/vladislavdragonenkov/salesconsole/internal/metrics"
	"github.com/vladislavdragonenkov/salesconsole/internal/version"
)

func main() {
	var (
		configPath  string
		apiURL      string
		verbose     bool
		showVersion bool
	)

	flag.StringVarP(&configPath, "config", "c", console.DefaultConfigPath(), "path to the console config file")
	flag.StringVar(&apiURL, "api-url", "", "API base URL (overrides config)")
	flag.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.String())
		return
	}

	setupLogger(verbose)

	cfg, err := console.LoadConfig(configPath)
	if err != nil {
		log.WithError(err).Fatal("не удалось прочитать конфигурацию")
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("консоль завершилась с ошибкой")
	}
}

// setupLogger настраивает формат и уровень логирования консоли.
// Логи идут в stderr и не мешают выводу REPL.
func setupLogger(verbose bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

// run связывает компоненты консоли и запускает REPL.
func run(ctx context.Context, cfg console.Config) error {
	logger := log.WithField("component", "console")

	sess := session.NewStore(cfg.SessionFile, logger)

	// 403 от API означает мёртвую сессию: сбрасываем токен.
	notices := notice.NewCenter(notice.DefaultTTL, func() {
		if err := sess.Clear(); err != nil {
			logger.WithError(err).Warn("failed to clear session after 403")
		}
	}, logger)

	client := api.NewClient(cfg.APIBaseURL, sess, logger)
	consoleMetrics := metrics.NewConsoleMetrics()

	engine := query.NewEngine(client, notices, consoleMetrics, logger)
	g := guard.NewGuard(client, engine, notices, consoleMetrics, logger)

	repl := console.NewREPL(cfg, client, sess, notices, engine, g, logger)
	return repl.Run(ctx)
}
