package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/inkpost/imgup/internal/adapter"
	"github.com/inkpost/imgup/internal/config"
	"github.com/inkpost/imgup/internal/transport"
)

var (
	uploadBaseURL string
	uploadAPI     string
	uploadToken   string
	uploadVerbose bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an image to the configured backend",
	Long: `Upload a single image to the configured backend and print the address it
resolves at as JSON.

Configuration is read from flags, falling back to the IMGUP_BASE_API_URL,
IMGUP_API and IMGUP_AUTH_TOKEN environment variables (a local .env file is
honoured). An interrupt while the upload is in flight aborts it.`,
	Example: `  imgup upload cat.png
  imgup upload --base-url https://api.example.com --api images --auth-token secret cat.png
  imgup upload -v large-scan.png`,
	Args: cobra.ExactArgs(1),
	RunE: uploadCommand,
}

func uploadCommand(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if uploadBaseURL != "" {
		cfg.BaseAPIURL = uploadBaseURL
	}
	if uploadAPI != "" {
		cfg.API = uploadAPI
	}
	if uploadToken != "" {
		cfg.Tokens = config.StaticToken(uploadToken)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	factory, err := adapter.Install(cfg, logger)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	up := factory.NewAdapter(&fileLoader{file: f, verbose: uploadVerbose})

	done := make(chan struct{})
	defer close(done)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			up.Abort()
		case <-done:
		}
	}()

	result, err := up.Upload(cmd.Context())
	if errors.Is(err, adapter.ErrAborted) {
		fmt.Fprintln(os.Stderr, "upload aborted")
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return err
	}
	if err != nil {
		return err
	}

	return outputJSON(result)
}

// fileLoader adapts an opened file to the adapter's Loader interface and
// mirrors progress to stderr in verbose mode.
type fileLoader struct {
	file    *os.File
	verbose bool
}

func (l *fileLoader) File(_ context.Context) (transport.File, error) {
	info, err := l.file.Stat()
	if err != nil {
		return transport.File{}, err
	}
	return transport.File{
		Name:   filepath.Base(l.file.Name()),
		Reader: l.file,
		Size:   info.Size(),
	}, nil
}

func (l *fileLoader) SetProgress(uploaded, total int64) {
	if l.verbose {
		fmt.Fprintf(os.Stderr, "[UPLOAD] %d/%d bytes\n", uploaded, total)
	}
}

func init() {
	uploadCmd.Flags().StringVar(&uploadBaseURL, "base-url", "", "Backend base API URL")
	uploadCmd.Flags().StringVar(&uploadAPI, "api", "", "Upload endpoint path under the base URL")
	uploadCmd.Flags().StringVar(&uploadToken, "auth-token", "", "Bearer token attached to the upload")
	uploadCmd.Flags().BoolVarP(&uploadVerbose, "verbose", "v", false, "Show upload progress on stderr")
}
