// cmd/chronosd/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/wardenlabs/chronos/config"
	"github.com/wardenlabs/chronos/internal/persistence"
	"github.com/wardenlabs/chronos/logger"
	"github.com/wardenlabs/chronos/scheduler"
)

// chronosd is a minimal example binary proving the scheduler library is
// operable end to end: it loads configuration, wires a logger and
// persistence backend, and runs until a termination signal is received.
// It authors no jobs of its own — job bodies are an embedder's concern.
func main() {
	var configPath string
	pflag.StringVar(&configPath, "config", "", "Path to a chronosd JSON config file")
	pflag.Parse()

	if configPath == "" {
		log.Fatal("chronosd: --config is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("chronosd: %v", err)
	}

	sink := logger.New("chronosd")

	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("chronosd: %v", err)
	}

	s := scheduler.New(scheduler.Options{
		Persistence:    backend,
		PersistPath:    cfg.PersistPath,
		LeaderLockPath: cfg.LeaderLockPath,
	})
	s.AttachLogger(sink)

	if !s.AcquireLeader() {
		sink.Info("another instance holds leadership; running in standby")
	}

	sink.Info(fmt.Sprintf("chronosd started with %d recovered job(s)", len(s.ListJobs())))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	sink.Info("chronosd shutting down")
	s.GracefulShutdown(0)
	fmt.Println(s.ExposeMetrics())
}

// openBackend constructs the persistence.Backend matching cfg's selected
// variant. BackendMemory, or no backend configured at all, yields a Memory
// backend, so the scheduler keeps metadata only for its process lifetime.
func openBackend(cfg *config.Config) (persistence.Backend, error) {
	switch cfg.PersistBackend {
	case config.BackendFile:
		return persistence.NewFile(cfg.PersistPath), nil
	case config.BackendBolt:
		return persistence.OpenBolt(cfg.PersistPath)
	case config.BackendSQL:
		return persistence.OpenSQL(cfg.PersistPath)
	case config.BackendMemory, "":
		return persistence.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown persist_backend %q", cfg.PersistBackend)
	}
}
