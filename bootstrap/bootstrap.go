package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulldump/box"
	"github.com/rs/zerolog"

	"github.com/populatedb/populatedb/api"
	"github.com/populatedb/populatedb/configuration"
	"github.com/populatedb/populatedb/populate"
	"github.com/populatedb/populatedb/service"
	"github.com/populatedb/populatedb/storage"
)

var VERSION = "dev"

// Bootstrap wires storage, service and HTTP server. The register callback is
// where the embedding program adds its computed stages, it may be nil.
func Bootstrap(c *configuration.Configuration, register func(s *service.Service) error) (start, stop func()) {

	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	storageConfig := storage.DefaultConfig()
	storageConfig.Dir = c.Dir
	storageConfig.InMemory = c.InMemory
	storageConfig.SyncWrites = c.SyncWrites
	storageConfig.Logger = &logger

	store, err := storage.Open(storageConfig)
	if err != nil {
		logger.Error().Err(err).Msg("open store")
		os.Exit(-1)
	}

	s, err := service.NewService(store, populate.LogObserver(logger))
	if err != nil {
		logger.Error().Err(err).Msg("build service")
		os.Exit(-1)
	}

	if register != nil {
		err = register(s)
		if err != nil {
			logger.Error().Err(err).Msg("register stages")
			os.Exit(-1)
		}
	}

	b := api.Build(s, VERSION)
	b.WithInterceptors(
		api.AccessLog(logger),
		api.RecoverFromPanic,
		api.PrettyErrorInterceptor,
	)

	server := &http.Server{
		Handler: box.Box2Http(b),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		logger.Error().Err(err).Msg("listen")
		os.Exit(-1)
	}
	logger.Info().Str("addr", c.HttpAddr).Msg("listening")

	stop = func() {
		server.Shutdown(context.Background())
		err := store.Close()
		if err != nil {
			logger.Error().Err(err).Msg("close store")
		}
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		logger.Info().Str("signal", sig.String()).Msg("signal received")
		stop()
	}()

	start = func() {
		err := server.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("serve")
		}
	}

	return
}
