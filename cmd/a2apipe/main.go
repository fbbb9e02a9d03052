// a2apipe runs the two-stage research -> blogpost agent pipeline and the
// agent hosts it talks to.
//
// Usage:
//
//	a2apipe serve-research [--config config.yaml]   # research agent host (:8003)
//	a2apipe serve-blog     [--config config.yaml]   # blogpost agent host (:8004)
//	a2apipe serve-demo     [--config config.yaml]   # both hosts in one process
//	a2apipe run --topic "..." [--config config.yaml] # run the pipeline as a client
//	a2apipe discover --url http://localhost:8003     # fetch an agent card
//	a2apipe version
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"a2apipe/config"
)

// Version information, injected at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve-research":
		runServeResearch(os.Args[2:])
	case "serve-blog":
		runServeBlog(os.Args[2:])
	case "serve-demo":
		runServeDemo(os.Args[2:])
	case "run":
		runPipeline(os.Args[2:])
	case "discover":
		runDiscover(os.Args[2:])
	case "version":
		fmt.Printf("a2apipe %s (%s)\n", Version, GitCommit)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: a2apipe <command> [flags]

Commands:
  serve-research   Start the research agent host
  serve-blog       Start the blogpost agent host
  serve-demo       Start both agent hosts in one process
  run              Run the two-stage pipeline against the hosts
  discover         Fetch and print an agent's capability card
  version          Print version information`)
}

// loadConfig parses the shared --config flag and loads configuration.
func loadConfig(name string, args []string, extra func(fs *flag.FlagSet)) *config.Config {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// buildLogger constructs the process logger from config.
func buildLogger(cfg config.LogConfig) *zap.Logger {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zc.Level = level
	}
	logger, err := zc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
