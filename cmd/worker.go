package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/backstage/services/catalog/internal/database"
	"example.com/backstage/services/catalog/internal/eventstore"
	"example.com/backstage/services/catalog/internal/messaging"
	"example.com/backstage/services/catalog/internal/relay"
	"example.com/backstage/services/catalog/internal/search"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the outbox relay worker",
	Long:  `Start the background worker that publishes committed events to the service bus and keeps the search index in sync`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}

	store := eventstore.New(db)

	publisher, err := messaging.NewPublisher(cfg.ServiceBus)
	if err != nil {
		return err
	}
	defer publisher.Close()

	// Search is optional, events are still published without it
	var indexer search.Indexer
	if cfg.Elastic.URL != "" {
		elasticClient, err := search.NewElasticClient(cfg.Elastic)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search indexing")
		} else {
			indexer = elasticClient
		}
	}

	outboxRelay := relay.New(store, publisher, indexer, cfg.Relay.BatchSize)

	g.Go(func() error {
		log.Info().Int("intervalSeconds", cfg.Relay.IntervalSeconds).Msg("Starting outbox relay")

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(time.Duration(cfg.Relay.IntervalSeconds)*time.Second),
			gocron.NewTask(func() {
				count, err := outboxRelay.ProcessOnce(ctx)
				if err != nil {
					log.Error().Err(err).Msg("Outbox relay run failed")
				}
				if count > 0 {
					log.Info().Int("count", count).Msg("Outbox relay run completed")
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()

		<-ctx.Done()

		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
