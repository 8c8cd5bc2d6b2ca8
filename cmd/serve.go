package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/inkpost/imgup/internal/server"
)

var (
	serveAddr    string
	serveAPI     string
	serveToken   string
	serveStorage StorageConfig
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bundled reference upload backend",
	Long: `Run a small HTTP backend implementing the simple-upload protocol, storing
images through a configurable storage provider. Intended for local
development and end-to-end testing of upload integrations.`,
	Example: `  imgup serve --addr :8080 --api images
  imgup serve --auth-token secret --storage-config-kv dir=/var/lib/imgup
  imgup serve --storage-provider minio \
    --storage-config-kv endpoint=localhost:9000 \
    --storage-config-kv access_key=minioadmin \
    --storage-config-kv secret_key=minioadmin \
    --storage-config-kv bucket=images \
    --storage-config-kv secure=false`,
	RunE: serveCommand,
}

func serveCommand(cmd *cobra.Command, args []string) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	provider, _, err := SetupStorageProvider(&serveStorage)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		API:       serveAPI,
		AuthToken: serveToken,
		Store:     provider,
		Logger:    log.Logger,
	})

	httpSrv := &http.Server{
		Addr:    serveAddr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", serveAddr).
			Str("api", serveAPI).
			Str("provider", provider.Name()).
			Msg("reference backend listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().StringVar(&serveAPI, "api", "images", "Upload endpoint path segment")
	serveCmd.Flags().StringVar(&serveToken, "auth-token", "", "Bearer token required on uploads (empty disables the check)")
	SetupStorageFlags(serveCmd, &serveStorage)
}
