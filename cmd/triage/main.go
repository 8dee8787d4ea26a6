// Package main implements the triage CLI tool.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mselway/triage/identity"
	"github.com/mselway/triage/internal/config"
	"github.com/mselway/triage/localstore"
	"github.com/mselway/triage/remote"
	"github.com/mselway/triage/score"
	"github.com/mselway/triage/session"
	"github.com/mselway/triage/task"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "triage",
	Short:         "Triage - priority-scored task tracking",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var rootOffline bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootOffline, "offline", false, "Queue mutations locally instead of writing to the store")
}

// cliSession bundles everything a command needs for one invocation.
type cliSession struct {
	cfg         *config.Config
	coordinator *session.Coordinator
	provider    *identity.FileProvider
	store       *remote.Store
}

// openSession loads config, opens the stores, and starts a
// coordinator. Sessions without a signed-in user run in guest mode.
func openSession(ctx context.Context) (*cliSession, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	local := localstore.NewStore(filepath.Join(cfg.Storage.DataDir, "local"))
	provider := identity.NewFileProvider(local)

	store, err := remote.Open(cfg.Storage.DataDir, score.Reference{})
	if err != nil {
		return nil, err
	}

	opts := session.Options{
		Provider: provider,
		Remote:   store,
		Local:    local,
		SeedTags: cfg.DefaultTags(),
		Logger:   log.New(os.Stderr, "", 0),
	}
	if cfg.Scoring.Endpoint != "" {
		opts.Scorer = score.NewRemoteScorer(cfg.Scoring.Endpoint)
	}
	coordinator := session.New(opts)

	if err := coordinator.Start(ctx); err != nil {
		coordinator.Close()
		store.Close()
		return nil, err
	}
	if coordinator.Mode() != session.ModeAuthenticated {
		if err := coordinator.ActivateGuest(); err != nil {
			coordinator.Close()
			store.Close()
			return nil, err
		}
	} else if rootOffline {
		if err := coordinator.SetOnline(ctx, false); err != nil {
			coordinator.Close()
			store.Close()
			return nil, err
		}
	}

	return &cliSession{
		cfg:         cfg,
		coordinator: coordinator,
		provider:    provider,
		store:       store,
	}, nil
}

func (s *cliSession) close() {
	s.coordinator.Close()
	_ = s.store.Close()
}

func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return config.Load(cwd)
}

// resolveTaskID matches a full id or a unique prefix against the
// session's tasks.
func resolveTaskID(tasks []task.Task, arg string) (string, error) {
	var matches []string
	for _, t := range tasks {
		if t.ID == arg {
			return arg, nil
		}
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous: matches %d tasks", arg, len(matches))
	}
}

// resolveTagIDs maps tag names or ids to ids against the session's tags.
func resolveTagIDs(tags []task.Tag, args []string) ([]string, error) {
	var ids []string
	for _, arg := range args {
		id := ""
		for _, tag := range tags {
			if tag.ID == arg || tag.Name == arg {
				id = tag.ID
				break
			}
		}
		if id == "" {
			return nil, fmt.Errorf("no tag named %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
