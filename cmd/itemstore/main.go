package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ItemStore/internal/auth"
	"ItemStore/internal/backup"
	"ItemStore/internal/config"
	"ItemStore/internal/items"
	"ItemStore/internal/version"
	"ItemStore/pkg/kit"
)

const finalBackupTimeout = 10 * time.Second

type options struct {
	host       string
	port       int
	logLevel   string
	configPath string
	version    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:          version.Name,
		Short:        "In-memory item store with a JSON HTTP API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.version {
				fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
				return nil
			}
			return run(cmd.Context(), o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.host, "host", os.Getenv("HOST"), `host IP to listen on, for example "0.0.0.0"`)
	f.IntVarP(&o.port, "port", "p", getenvInt("PORT", 3000), "port to listen on")
	f.StringVarP(&o.logLevel, "log", "l", "info", "log level: debug, info, warn, error")
	f.StringVar(&o.configPath, "config", "", "path to "+config.FileName+" (default: search working dir, then ~/.config)")
	f.BoolVarP(&o.version, "version", "v", false, "print version info and exit")

	return cmd
}

func run(parent context.Context, o options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level, err := kit.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("--log: %w", err)
	}

	cfg := config.FromEnv()
	log := kit.NewLogger(version.Name, level, cfg.JSONLogs())
	defer func() { _ = log.Sync() }()

	info := version.Get()
	log.Info("starting", zap.String("name", info.Name), zap.Stringer("env", cfg.Env))
	if cfg.JSONLogs() {
		log.Info("version", zap.Any("info", info))
	} else {
		log.Info(info.Pretty())
	}

	fc, err := loadFileConfig(o.configPath, log)
	if err != nil {
		return err
	}

	guard, err := newGuard(cfg, log)
	if err != nil {
		return err
	}

	store := items.NewMemStore(items.DefaultCapacity)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := items.NewStoreMetrics(reg, store)

	var (
		runner *backup.Runner
		ready  func(context.Context) error
	)
	if fc.Backup.Enabled {
		sink, err := backup.Open(ctx, fc.Backup.Driver, fc.Backup.DSN)
		if err != nil {
			return fmt.Errorf("open backup: %w", err)
		}
		defer func() { _ = sink.Close() }()

		runner = &backup.Runner{Sink: sink, Store: store, Interval: fc.Backup.Interval(), Log: log}
		ready = sink.Ping

		if fc.Backup.RestoreOnStart {
			n, err := runner.Restore(ctx)
			if err != nil {
				return err
			}
			log.Info("restored items from backup", zap.Int("items", n), zap.String("driver", fc.Backup.Driver))
		}
	}

	s := &items.Server{Store: store, Log: log, Metrics: storeMetrics}
	h, err := items.NewHandler(s, items.HTTPDeps{
		Log:            log,
		Service:        version.Name,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
		Guard:          guard,
		AdminLimiter:   kit.NewIPRateLimiter(cfg.AdminRateLimit, cfg.AdminBurst),
		Ready:          ready,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", resolveAddr(o.host, o.port))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return kit.RunHTTPServer(gctx, ln, h, log) })
	if fc.PeriodicDBLogEnabled {
		g.Go(func() error { return items.LogStats(gctx, store, fc.StatsInterval(), log) })
	}
	if runner != nil {
		g.Go(func() error { return runner.Run(gctx) })
	}

	err = g.Wait()

	if runner != nil {
		bctx, cancel := context.WithTimeout(context.Background(), finalBackupTimeout)
		defer cancel()
		if berr := runner.SaveNow(bctx); berr != nil {
			log.Error("final backup failed", zap.Error(berr))
		}
	}

	if err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
	return err
}

func loadFileConfig(path string, log *zap.Logger) (config.FileConfig, error) {
	if path != "" {
		return config.LoadFile(path)
	}

	found, err := config.FindFile()
	if errors.Is(err, config.ErrNoConfigFile) {
		log.Debug("no config file, using defaults")
		return config.FileConfig{}, nil
	}
	if err != nil {
		log.Warn("config file lookup failed, using defaults", zap.Error(err))
		return config.FileConfig{}, nil
	}

	fc, err := config.LoadFile(found)
	if err != nil {
		log.Warn("config file invalid, using defaults", zap.Error(err))
		return config.FileConfig{}, nil
	}
	log.Info("loaded config file", zap.String("path", found))
	return fc, nil
}

func newGuard(cfg config.Config, log *zap.Logger) (*auth.Guard, error) {
	if cfg.APIKeyHash != "" {
		return auth.NewHashedGuard(cfg.APIKeyHash)
	}
	if cfg.APIKey == config.DefaultAPIKey && cfg.Env == config.Production {
		log.Warn("using the default api key in PRODUCTION; set API_KEY or API_KEY_HASH")
	}
	return auth.NewGuard(cfg.APIKey), nil
}

// resolveAddr listens on localhost when no host is given and on all
// interfaces when the host does not parse as an IP.
func resolveAddr(host string, port int) string {
	ip := net.IPv4(127, 0, 0, 1)
	if host != "" {
		ip = net.ParseIP(host)
		if ip == nil {
			ip = net.IPv4zero
		}
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(port))
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
