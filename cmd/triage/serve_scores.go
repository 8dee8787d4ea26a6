package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mselway/triage/remote"
	"github.com/mselway/triage/score"
	"github.com/mselway/triage/web"
)

var serveScoresCmd = &cobra.Command{
	Use:   "serve-scores",
	Short: "Serve the scoring HTTP endpoint",
	Args:  cobra.NoArgs,
	RunE:  runServeScores,
}

var serveScoresListen string

func init() {
	rootCmd.AddCommand(serveScoresCmd)
	serveScoresCmd.Flags().StringVar(&serveScoresListen, "listen", "", "Listen address (overrides config)")
}

func runServeScores(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	store, err := remote.Open(cfg.Storage.DataDir, score.Reference{})
	if err != nil {
		return err
	}
	defer store.Close()

	listen := cfg.Scoring.Listen
	if serveScoresListen != "" {
		listen = serveScoresListen
	}

	handler := web.NewHandler(web.Options{
		Store:  store,
		Logger: log.New(os.Stderr, "", log.LstdFlags),
	})

	fmt.Printf("Serving scores on %s\n", listen)
	return http.ListenAndServe(listen, handler)
}
