package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"adapterd/internal/basemodel"
	"adapterd/internal/config"
	"adapterd/internal/engine"
	"adapterd/internal/httpapi"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	var (
		addr          string
		configPath    string
		baseModelPath string
		baseModelURL  string
		cacheDir      string
		logLevel      string
		maxBodyMB     int64
		corsEnabled   bool
		corsOrigins   string
	)

	root := &cobra.Command{
		Use:           "adapterd",
		Short:         "Adapter patching and intent/slot classification daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{
				Addr:          addr,
				BaseModelPath: baseModelPath,
				BaseModelURL:  baseModelURL,
				CacheDir:      cacheDir,
				LogLevel:      logLevel,
				MaxBodyBytes:  maxBodyMB << 20,
				CORSEnabled:   corsEnabled,
			}
			if corsOrigins != "" {
				cfg.CORSAllowedOrigins = splitCSV(corsOrigins)
			}
			if configPath != "" {
				fileCfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = mergeConfig(fileCfg, cfg)
			}
			return run(cfg)
		},
	}

	fl := root.Flags()
	fl.StringVar(&addr, "addr", envOr("ADAPTERD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	fl.StringVar(&configPath, "config", envOr("ADAPTERD_CONFIG", ""), "Optional config file (.yaml/.json/.toml); file values win over flags")
	fl.StringVar(&baseModelPath, "base-model", envOr("ADAPTERD_BASE_MODEL", ""), "Path to the base model file")
	fl.StringVar(&baseModelURL, "base-model-url", envOr("ADAPTERD_BASE_MODEL_URL", ""), "URL to download the base model from when no local path is set")
	fl.StringVar(&cacheDir, "cache-dir", envOr("ADAPTERD_CACHE_DIR", "~/.cache/adapterd"), "Directory for downloaded base models")
	fl.StringVar(&logLevel, "log-level", envOr("ADAPTERD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error|off")
	fl.Int64Var(&maxBodyMB, "max-body-mb", 64, "Maximum request body size in MiB")
	fl.BoolVar(&corsEnabled, "cors", os.Getenv("ADAPTERD_CORS") == "1", "Enable CORS middleware")
	fl.StringVar(&corsOrigins, "cors-origins", envOr("ADAPTERD_CORS_ORIGINS", ""), "Comma-separated allowed CORS origins")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "adapterd: %v\n", err)
		os.Exit(1)
	}
}

// mergeConfig overlays file values onto flag/env values. File wins where set.
func mergeConfig(file, flags config.Config) config.Config {
	out := flags
	if file.Addr != "" {
		out.Addr = file.Addr
	}
	if file.BaseModelPath != "" {
		out.BaseModelPath = file.BaseModelPath
	}
	if file.BaseModelURL != "" {
		out.BaseModelURL = file.BaseModelURL
	}
	if file.CacheDir != "" {
		out.CacheDir = file.CacheDir
	}
	if file.LogLevel != "" {
		out.LogLevel = file.LogLevel
	}
	if file.MaxBodyBytes > 0 {
		out.MaxBodyBytes = file.MaxBodyBytes
	}
	if file.CORSEnabled {
		out.CORSEnabled = true
	}
	if len(file.CORSAllowedOrigins) > 0 {
		out.CORSAllowedOrigins = file.CORSAllowedOrigins
	}
	return out
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if level == "off" {
		lvl = zerolog.Disabled
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func newProvider(cfg config.Config) (basemodel.Provider, error) {
	if cfg.BaseModelPath != "" {
		return basemodel.NewFileProvider(cfg.BaseModelPath)
	}
	if cfg.BaseModelURL != "" {
		name := cfg.BaseModelURL[strings.LastIndex(cfg.BaseModelURL, "/")+1:]
		if name == "" {
			name = "base-model.onnx"
		}
		return basemodel.NewHTTPProvider(cfg.BaseModelURL, cfg.CacheDir+"/"+name)
	}
	return nil, fmt.Errorf("either --base-model or --base-model-url is required")
}

func run(cfg config.Config) error {
	log := newLogger(cfg.LogLevel)

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	eng := engine.NewWithConfig(engine.Config{
		Provider: provider,
		Logger:   &log,
	})

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, nil, nil)

	// Shutdown cancels in-flight handler work as well as the model download.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	// The base model may be a multi-hundred-megabyte download; serve /status
	// and /healthz while it loads.
	go func() {
		if err := eng.Initialize(baseCtx); err != nil {
			log.Error().Err(err).Msg("base model initialization failed")
		}
	}()

	mux := httpapi.NewMux(eng)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("adapterd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
