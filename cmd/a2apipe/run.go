package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"a2apipe/pipeline"
	"a2apipe/relay"
)

const defaultTopic = "The future of sustainable energy technologies"

// runPipeline drives the two-stage workflow: topic -> research -> blog post.
func runPipeline(args []string) {
	var topic string
	cfg := loadConfig("run", args, func(fs *flag.FlagSet) {
		fs.StringVar(&topic, "topic", "", "Topic to research and write about")
	})
	logger := buildLogger(cfg.Log)
	defer logger.Sync()

	if topic == "" {
		topic = defaultTopic
		logger.Info("no topic given, using default", zap.String("topic", topic))
	}

	collector := maybeMetrics(cfg, logger)

	researchClient := relay.NewClient(&relay.ClientConfig{
		BaseURL:            cfg.Research.BaseURL,
		Name:               "deepsearch",
		Timeout:            cfg.Client.Timeout,
		DiscoverRetries:    cfg.Client.DiscoverRetries,
		DiscoverRetryDelay: cfg.Client.DiscoverRetryDelay,
		Logger:             logger,
		Metrics:            collector,
	})
	blogClient := relay.NewClient(&relay.ClientConfig{
		BaseURL:            cfg.Blog.BaseURL,
		Name:               "blogpost",
		Timeout:            cfg.Client.Timeout,
		DiscoverRetries:    cfg.Client.DiscoverRetries,
		DiscoverRetryDelay: cfg.Client.DiscoverRetryDelay,
		Logger:             logger,
		Metrics:            collector,
	})

	ctx, stop := signalContext()
	defer stop()

	// Discovery is advisory: log what the agents say about themselves and
	// proceed either way.
	discoverAll(ctx, logger, researchClient, blogClient)

	pipe := pipeline.New("research-to-blog",
		&pipeline.Config{Logger: logger, Metrics: collector},
		pipeline.Stage{Name: "deepsearch", Invoker: researchClient},
		pipeline.Stage{Name: "blogpost", Invoker: blogClient},
	)

	result, err := pipe.Run(ctx, topic)
	if err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Pipeline failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result)
}

// discoverAll fetches all agent cards concurrently with a short deadline.
func discoverAll(ctx context.Context, logger *zap.Logger, clients ...*relay.Client) {
	dctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(dctx)
	for _, client := range clients {
		g.Go(func() error {
			card, err := client.Discover(gctx)
			if err != nil {
				logger.Warn("agent discovery failed, proceeding anyway",
					zap.String("agent", client.Name()),
					zap.Error(err),
				)
				return nil
			}
			logger.Info("discovered agent",
				zap.String("name", card.Name),
				zap.String("description", card.Description),
			)
			return nil
		})
	}
	_ = g.Wait()
}

// runDiscover fetches and prints one agent's capability card.
func runDiscover(args []string) {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	url := fs.String("url", "http://localhost:8003", "Agent base URL")
	fs.Parse(args)

	client := relay.NewClient(relay.DefaultClientConfig(*url))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	card, err := client.Discover(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(card, "", "  ")
	fmt.Println(string(out))
}
