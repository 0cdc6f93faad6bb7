package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/sdr-enthusiasts/acarshub/internal/adsb"
	"github.com/sdr-enthusiasts/acarshub/internal/config"
	"github.com/sdr-enthusiasts/acarshub/internal/correlate"
	"github.com/sdr-enthusiasts/acarshub/internal/database"
	"github.com/sdr-enthusiasts/acarshub/internal/decoder"
	"github.com/sdr-enthusiasts/acarshub/internal/dispatcher"
	"github.com/sdr-enthusiasts/acarshub/internal/influx"
	"github.com/sdr-enthusiasts/acarshub/internal/listener"
	"github.com/sdr-enthusiasts/acarshub/internal/logging"
	"github.com/sdr-enthusiasts/acarshub/internal/monitor"
	intOtel "github.com/sdr-enthusiasts/acarshub/internal/otel"
	"github.com/sdr-enthusiasts/acarshub/internal/storage"
	"github.com/sdr-enthusiasts/acarshub/internal/worker"
	"github.com/sdr-enthusiasts/acarshub/pkg/core"
)

// Version can be set at build time via ldflags.
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"
)

// feedLinks maps config keys to protocol links, in listen order.
var feedLinks = []struct {
	key  string
	link core.LinkType
}{
	{"acars", core.LinkACARS},
	{"vdlm2", core.LinkVDLM2},
	{"hfdl", core.LinkHFDL},
	{"imsl", core.LinkIMSL},
	{"irdm", core.LinkIRDM},
}

func main() {
	configDir := flag.String("config", ".", "directory containing acarshub.cfg.json")
	flag.Parse()

	if err := run(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "acarshub: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	if err := config.Load(configDir); err != nil {
		// defaults still apply without a config file
		fmt.Fprintf(os.Stderr, "acarshub: %v, continuing with defaults\n", err)
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	// OTel provider, no-op unless enabled
	var otelLogWriter *os.File
	if viper.GetBool("otel.enabled") {
		var err error
		otelLogWriter, err = os.OpenFile(filepath.Join(logsDir, "otel.log"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("creating otel log file: %w", err)
		}
		defer otelLogWriter.Close()
	}

	otelProvider, err := intOtel.New(intOtel.Config{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  "acarshub",
		BatchTimeout: 5 * time.Second,
		LogWriter:    otelLogWriter,
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	})
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}
	defer otelProvider.Shutdown(context.Background())

	// slog with console, file, and optional bridge outputs
	logFile, err := os.OpenFile(filepath.Join(logsDir, "acarshub.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	gelfAddress := ""
	if viper.GetBool("graylog.enabled") {
		gelfAddress = viper.GetString("graylog.address")
	}

	logManager := logging.NewSlogManager()
	logManager.Setup(logFile, viper.GetString("logLevel"), otelProvider.LoggerProvider(), gelfAddress)
	logger := logManager.Logger()
	logger.Info("Starting acarshub", "version", Version, "buildDate", BuildDate)

	// zerolog for the database and influx managers
	zlogWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zlog := zerolog.New(zlogWriter).With().Timestamp().Logger()

	// database with sqlite in-memory fallback
	dbManager := database.NewManager(zlog.With().Str("component", "database").Logger())
	dbManager.SqliteFilePath = viper.GetString("db.sqlitePath")
	if err := dbManager.Connect(); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := dbManager.Setup(); err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}

	backend, err := storage.NewBackend("gorm", dbManager.DB, logManager)
	if err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}
	defer backend.Close()

	workerManager := worker.NewManager(worker.Dependencies{
		LogManager: logManager,
		Backend:    backend,
	})
	workerManager.Start(5 * time.Second)
	defer workerManager.Stop()

	// periodic disk dump when running on the in-memory fallback
	stopDump := make(chan struct{})
	defer close(stopDump)
	if dbManager.ShouldSaveLocal {
		go func() {
			ticker := time.NewTicker(viper.GetDuration("db.dumpInterval"))
			defer ticker.Stop()
			for {
				select {
				case <-stopDump:
					return
				case <-ticker.C:
					if err := dbManager.DumpMemoryToDisk(); err != nil {
						logger.Error("Failed to dump database to disk", "error", err)
					}
				}
			}
		}()
	}

	// influx stats, optional
	var influxManager *influx.Manager
	if viper.GetBool("influx.enabled") {
		influxManager = influx.NewManager(
			zlog.With().Str("component", "influx").Logger(),
			filepath.Join(logsDir, "influx-backup.gz"),
		)
		if err := influxManager.Connect(); err != nil {
			logger.Error("InfluxDB unavailable, stats disabled", "error", err)
			influxManager = nil
		}
	}

	// correlation pipeline
	decodeService := decoder.New(nil)
	matcher := correlate.NewMatcher(config.AlertTerms())
	store := correlate.NewStore(matcher, decodeService.Redecode)
	maxGroups := viper.GetInt("groups.max")

	adsbContext := adsb.NewContext()

	eventDispatcher, err := dispatcher.New(logger)
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	var feeds []listener.Feed
	for _, fl := range feedLinks {
		if !viper.GetBool("listen." + fl.key + ".enabled") {
			continue
		}
		feeds = append(feeds, listener.Feed{
			Link: fl.link,
			Port: viper.GetInt("listen." + fl.key + ".port"),
		})
		eventDispatcher.Register(string(fl.link),
			ingestHandler(fl.link, decodeService, store, backend, influxManager, adsbContext, maxGroups, logger),
			dispatcher.Buffered(1024), dispatcher.Blocking(), dispatcher.Logged())
	}

	listenManager := listener.NewManager(listener.Dependencies{
		LogManager: logManager,
		Dispatcher: eventDispatcher,
	}, feeds)
	if err := listenManager.Start(); err != nil {
		return fmt.Errorf("starting listeners: %w", err)
	}
	defer listenManager.Stop()

	// ADS-B feed poller, optional
	var poller *adsb.Service
	if viper.GetBool("adsb.enabled") {
		poller = adsb.NewService(adsb.Dependencies{
			LogManager: logManager,
			Context:    adsbContext,
			URL:        viper.GetString("adsb.url"),
			Interval:   viper.GetDuration("adsb.interval"),
			StationLat: viper.GetFloat64("station.latitude"),
			StationLon: viper.GetFloat64("station.longitude"),
		})
		if err := poller.Start(); err != nil {
			return fmt.Errorf("starting adsb poller: %w", err)
		}
		defer poller.Stop()
	}

	// periodic cull and health reporting
	monitorDeps := monitor.Dependencies{
		Store:         store,
		ADSBContext:   adsbContext,
		LogManager:    logManager,
		WorkerManager: workerManager,
		Influx:        influxManager,
		QueueDepth:    queueDepth(backend),
		MaxGroups:     maxGroups,
		Interval:      viper.GetDuration("groups.cullInterval"),
	}
	if poller != nil {
		monitorDeps.Enricher = poller
	}
	monitorService := monitor.NewService(monitorDeps)
	if err := monitorService.Start(); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}
	defer monitorService.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutting down", "signal", sig.String())

	if dbManager.ShouldSaveLocal {
		if err := dbManager.DumpMemoryToDisk(); err != nil {
			logger.Error("Final database dump failed", "error", err)
		}
	}
	logManager.Flush(context.Background())

	return nil
}

// ingestHandler builds the per-feed pipeline: decode the frame, fold it
// into its group, persist it, and count it.
func ingestHandler(
	link core.LinkType,
	decodeService *decoder.Service,
	store *correlate.Store,
	backend storage.Backend,
	influxManager *influx.Manager,
	adsbContext *adsb.Context,
	maxGroups int,
	logger *slog.Logger,
) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		msg, err := decodeService.Decode(link, e.Payload)
		if err != nil {
			return nil, fmt.Errorf("decoding %s frame: %w", link, err)
		}

		result := store.Ingest(msg)

		if result.Action != correlate.ActionDuplicate {
			if err := backend.RecordMessage(msg); err != nil {
				logger.Error("Failed to record message", "link", string(link), "error", err)
			}
		}

		if influxManager != nil {
			ctx := context.Background()
			point := influx.MessagePoint(msg, string(result.Action))
			if err := influxManager.WritePoint(ctx, "messages", point); err != nil {
				logger.Error("Failed to write message point", "error", err)
			}
			if result.Matched {
				if err := influxManager.WritePoint(ctx, "alerts", influx.AlertPoint(msg)); err != nil {
					logger.Error("Failed to write alert point", "error", err)
				}
			}
		}

		// keep the arena inside budget as messages arrive, not just on
		// the monitor tick
		if store.Len() > maxGroups {
			store.Cull(maxGroups, adsbContext.Snapshot())
		}

		return result, nil
	}
}

// queueDepth adapts the backend's optional queue length accessor.
func queueDepth(backend storage.Backend) monitor.QueueDepthProvider {
	if p, ok := backend.(monitor.QueueDepthProvider); ok {
		return p
	}
	return nil
}
