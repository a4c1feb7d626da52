package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"github.com/lgpang/smash/internal/scatterd"
	"github.com/lgpang/smash/pkg/config"
	"github.com/lgpang/smash/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	var configPath string
	var configYAML string
	var grpcAddr string
	var httpAddr string
	var logLevel string

	flag.StringVar(&configPath, "config", os.Getenv("SCATTERD_CONFIG"), "path to the YAML configuration (defaults when empty)")
	flag.StringVar(&configYAML, "config-yaml", os.Getenv("SCATTERD_CONFIG_YAML"), "inline YAML configuration, used when -config is empty")
	flag.StringVar(&grpcAddr, "grpc-addr", os.Getenv("SCATTERD_GRPC_ADDR"), "gRPC listen address (overrides config)")
	flag.StringVar(&httpAddr, "http-addr", os.Getenv("SCATTERD_HTTP_ADDR"), "HTTP listen address (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error; overrides config)")
	flag.Parse()

	loaded, err := loadConfig(configPath, configYAML)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	cfg := *loaded
	if grpcAddr != "" {
		cfg.Server.GRPCAddr = grpcAddr
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stdout))

	service, err := scatterd.NewServiceFromConfig(&cfg)
	if err != nil {
		logger.Error("failed to set up scattering service", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var grpcServer *grpc.Server
	if cfg.Server.GRPCAddr != "" {
		grpcServer = grpc.NewServer()
		scatterd.RegisterScatterServiceServer(grpcServer, scatterd.NewScatterGRPCServer(service))

		grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen for gRPC", "addr", cfg.Server.GRPCAddr, "error", err)
			stop()
			os.Exit(1)
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.Server.GRPCAddr)
			if err := grpcServer.Serve(grpcLis); err != nil {
				logger.Error("gRPC server error", "error", err)
				stop()
			}
		}()
	}

	var httpSrv *http.Server
	if cfg.Server.HTTPAddr != "" {
		httpSrv = &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           scatterd.NewHTTPServer(service).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if httpSrv != nil {
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
	}
}

// loadConfig reads the configuration file at path, or parses inline when
// path is empty. Without either the defaults are used.
func loadConfig(path, inline string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadConfig(path)
	case inline != "":
		return config.ParseConfigYAMLString(inline)
	default:
		cfg := config.Default()
		return &cfg, nil
	}
}
