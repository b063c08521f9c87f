package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"clinicsearch/internal/api"
	"clinicsearch/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the suggestion HTTP API",
	Long: `Start the HTTP API exposing suggestion search and embedding
generation:

  GET  /api/:type/suggestions?keyword=...
  POST /api/:type/embeddings
  POST /api/:type/:id/embeddings`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	emb, err := newEmbedder()
	if err != nil {
		return err
	}

	generator := usecase.NewGenerator(st, emb, logger)
	matcher := usecase.NewMatcher(st, emb, newTranslator(), matcherOptions(), logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(api.RequestID())
	e.Use(api.RequestLogger(logger))

	h := api.NewHandler(matcher, generator, logger)
	h.RegisterRoutes(e.Group("/api"))

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	go func() {
		logger.Info().Str("addr", addr).Str("model", emb.ModelName()).Msg("server started")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
