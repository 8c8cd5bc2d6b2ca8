package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkpost/imgup/internal/adapter"
)

var rootCmd = &cobra.Command{
	Use:   "imgup",
	Short: "An image upload client for simple-upload backends",
	Long: `Imgup talks to backends speaking the simple-upload protocol: a multipart
POST with bearer authorization, answered by a JSON body carrying the stored
image's id.

It ships the upload adapter used by editor integrations together with a
reference backend for local development.`,
}

func Execute() {
	err := rootCmd.Execute()
	if errors.Is(err, adapter.ErrAborted) {
		os.Exit(130)
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(serveCmd)
}
