package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sjsage522/refundscraper/config"
	"sjsage522/refundscraper/helpers"
	"sjsage522/refundscraper/internal"
	"sjsage522/refundscraper/internal/crawler"
	"sjsage522/refundscraper/internal/invoice"
	"sjsage522/refundscraper/logger"
	"sjsage522/refundscraper/services/cache"
	"sjsage522/refundscraper/services/catalog"
	"sjsage522/refundscraper/services/publisher"
	"sjsage522/refundscraper/services/sink"
	"sjsage522/refundscraper/services/worker"
)

var cfg *config.Config

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "refundscraper",
		Short:         "Collects TV game fees and finds them on phone bills",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load environment variables
			_ = godotenv.Load()

			// Initialize logger first
			logger.Init()

			// Load and validate configuration
			cfg = config.LoadConfig()
			return cfg.Validate()
		},
	}

	root.AddCommand(newWorkerCmd(), newScrapeCmd(), newInvoiceCmd())
	return root
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Scrape every broadcaster on an interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Default

			log.Info().
				Str("environment", cfg.Environment).
				Bool("production", cfg.IsProduction()).
				Dur("scrape_interval", cfg.ScrapeInterval).
				Msg("Starting application")

			// Set up context with cancellation
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Set up signal handling
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			deps, err := initDependencies(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer deps.Close()

			scrapers := crawler.CreateScrapers(cfg, deps.Cache, deps.Fetcher)
			if len(scrapers) == 0 {
				return fmt.Errorf("no scrapers were created")
			}

			w := worker.NewWorker(ctx, scrapers, deps.Sink, deps.Publisher, cfg.ScrapeInterval)

			// Start worker in a goroutine
			workerDone := make(chan error, 1)
			go func() {
				log.Info().Int("scraper_count", len(scrapers)).Msg("Starting refund worker")
				workerDone <- w.Start()
			}()

			// Wait for shutdown signal or worker exit
			select {
			case sig := <-sigChan:
				log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
				cancel()
				<-workerDone
			case err := <-workerDone:
				if err != nil {
					log.Error().Err(err).Msg("Worker exited with error")
					return err
				}
			}

			log.Info().Msg("Shutting down gracefully...")
			return nil
		},
	}
}

func newScrapeCmd() *cobra.Command {
	var channel string
	var publish bool

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape round and print the games found",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := initDependencies(ctx, cfg, publish)
			if err != nil {
				return err
			}
			defer deps.Close()

			var scrapers []crawler.Scraper
			for _, s := range crawler.CreateScrapers(cfg, deps.Cache, deps.Fetcher) {
				if channel == "" || strings.EqualFold(s.GetChannel(), channel) {
					scrapers = append(scrapers, s)
				}
			}
			if len(scrapers) == 0 {
				return fmt.Errorf("no scraper for channel %q", channel)
			}

			results := worker.NewWorker(ctx, scrapers, deps.Sink, deps.Publisher, cfg.ScrapeInterval).RunOnce()
			renderGames(os.Stdout, results)

			for _, r := range results {
				if r.Err != nil {
					return fmt.Errorf("%s: %w", r.Scraper, r.Err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "only scrape this broadcaster (TF1, M6, France TV)")
	cmd.Flags().BoolVar(&publish, "publish", false, "also publish games on the Redis streams")
	return cmd
}

func newInvoiceCmd() *cobra.Command {
	var file, id, date string
	var publish bool

	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Find game fees on a phone bill PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			inv := invoice.Invoice{ID: id, FilePath: file, Downloaded: true}
			if inv.ID == "" {
				inv.ID = helpers.URLID(file)
			}
			inv.Date = time.Now().UTC().Truncate(24 * time.Hour)
			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				inv.Date = d
			}

			deps, err := initDependencies(ctx, cfg, publish)
			if err != nil {
				return err
			}
			defer deps.Close()

			fees, err := invoice.NewAnalyzer(deps.Catalog, deps.Sink).AnalyzeFile(ctx, inv)
			if err != nil {
				return err
			}

			renderFees(os.Stdout, fees)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the invoice PDF")
	cmd.Flags().StringVar(&id, "id", "", "invoice identifier (defaults to a hash of the path)")
	cmd.Flags().StringVar(&date, "date", "", "invoice date, YYYY-MM-DD (defaults to today)")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish fees on the Redis streams")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// initDependencies initializes all required services. Without publish the
// Redis streams are left alone and records only reach the catalog.
func initDependencies(ctx context.Context, cfg *config.Config, publish bool) (*internal.Dependencies, error) {
	deps := &internal.Dependencies{
		Cache:   cache.NewMemcacheService(cfg.MemcacheAddr),
		Fetcher: helpers.NewHTTPFetcher(cfg.HTTPTimeout),
	}
	logger.Info("Using Memcache at %s", cfg.MemcacheAddr)

	if cfg.DatabaseURL != "" {
		db, err := catalog.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg := catalog.NewPostgresCatalog(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		deps.DB = db
		deps.Catalog = pg
		logger.Info("Connected to Postgres game catalog")
	} else {
		deps.Catalog = catalog.NewMemoryCatalog()
		logger.Warn("DATABASE_URL not set, game catalog is kept in memory")
	}

	sinks := sink.Multi{sink.NewCatalogSink(deps.Catalog)}

	if publish {
		redisPublisher := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(); err != nil {
			redisPublisher.Close()
			deps.Close()
			return nil, err
		}
		deps.Publisher = redisPublisher
		sinks = append(sinks, sink.NewStreamSink(redisPublisher))

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	deps.Sink = sinks
	return deps, nil
}
