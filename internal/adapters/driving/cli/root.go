// Package cli provides the sitechat command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitechat/internal/core/domain"
	"github.com/custodia-labs/sitechat/internal/core/ports/driven"
	"github.com/custodia-labs/sitechat/internal/core/ports/driving"
	"github.com/custodia-labs/sitechat/internal/logger"
)

// EnvHome overrides the default data directory.
const EnvHome = "SITECHAT_HOME"

// version is set by SetVersion, usually from build flags.
var version = "dev"

// Persistent flag values.
var (
	verbose        bool
	dataDir        string
	collectionFlag string
	ephemeral      bool
)

// Services used by commands. They are built lazily by the bootstrap so
// commands that only touch settings never contact a model provider.
var (
	settingsService  driving.SettingsService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	agentService     driving.Agent
	systemPrompt     string
	chatModelName    string
	closeServices    func() error
	configValidator  driven.AIConfigValidator
	bootstrap        *Bootstrap
)

// Options are passed to the bootstrap when services are built.
type Options struct {
	// DataDir holds config.toml, prompts and the collection database.
	DataDir string

	// Settings are the effective settings, including any key typed at the
	// prompt that was not persisted.
	Settings *domain.Settings

	// Ephemeral keeps collections in memory for this run only.
	Ephemeral bool

	// Collection is the collection the agent's retrieval tool searches.
	Collection string
}

// Services are the driving ports the bootstrap builds.
type Services struct {
	Ingest       driving.IngestService
	Retrieval    driving.RetrievalService
	Agent        driving.Agent
	SystemPrompt string
	Model        string

	// Close releases stores and model clients. May be nil.
	Close func() error
}

// Bootstrap builds services on demand. Main supplies it; tests leave it nil
// and set the service variables directly.
type Bootstrap struct {
	// Settings opens the settings service for dataDir.
	Settings func(dataDir string) (driving.SettingsService, error)

	// Services builds the AI-backed services.
	Services func(ctx context.Context, opts Options) (*Services, error)

	// Validator checks provider connectivity for settings check.
	Validator func() driven.AIConfigValidator
}

var rootCmd = &cobra.Command{
	Use:   "sitechat",
	Short: "Chat with web pages and documents",
	Long: `sitechat loads web pages and local documents into persistent
collections, retrieves the passages most similar to a question, and lets a
chat model answer with a retrieve_context tool.

Configuration lives in ~/.sitechat/config.toml (or $SITECHAT_HOME).`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $SITECHAT_HOME or ~/.sitechat)")
	rootCmd.PersistentFlags().StringVarP(&collectionFlag, "collection", "c", "", "collection name (default from settings)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep collections in memory for this run only")
}

// SetBootstrap sets how services are built.
func SetBootstrap(b *Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := shutdown(); err == nil {
		err = cerr
	}
	return err
}

// DataDir resolves the data directory from the flag, SITECHAT_HOME or the
// home directory.
func DataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	if env := os.Getenv(EnvHome); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sitechat"), nil
}

// ensureSettings opens the settings service if it is not set yet.
func ensureSettings() error {
	if settingsService != nil {
		return nil
	}
	if bootstrap == nil || bootstrap.Settings == nil {
		return errors.New("settings service not configured")
	}

	dir, err := DataDir()
	if err != nil {
		return err
	}
	svc, err := bootstrap.Settings(dir)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settingsService = svc
	return nil
}

// ensureValidator obtains the provider validator if it is not set yet.
func ensureValidator() error {
	if configValidator != nil {
		return nil
	}
	if bootstrap == nil || bootstrap.Validator == nil {
		return errors.New("validator not configured")
	}
	configValidator = bootstrap.Validator()
	return nil
}

// ensureServices builds the AI-backed services if they are not set yet.
// A missing OpenAI key is prompted for when stdin is a terminal.
func ensureServices(cmd *cobra.Command) error {
	if agentService != nil && ingestService != nil && retrievalService != nil {
		return nil
	}
	if bootstrap == nil || bootstrap.Services == nil {
		return errors.New("services not configured")
	}
	if err := ensureSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	promptForAPIKeys(cmd, settings)

	dir, err := DataDir()
	if err != nil {
		return err
	}

	svc, err := bootstrap.Services(commandContext(cmd), Options{
		DataDir:    dir,
		Settings:   settings,
		Ephemeral:  ephemeral,
		Collection: collectionName(),
	})
	if err != nil {
		return err
	}

	ingestService = svc.Ingest
	retrievalService = svc.Retrieval
	agentService = svc.Agent
	systemPrompt = svc.SystemPrompt
	chatModelName = svc.Model
	closeServices = svc.Close
	return nil
}

// shutdown closes services built by the bootstrap.
func shutdown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// collectionName returns the --collection flag or the configured default.
func collectionName() string {
	if collectionFlag != "" {
		return collectionFlag
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.Retrieval.Collection != "" {
			return s.Retrieval.Collection
		}
	}
	return domain.DefaultCollection
}

// defaultK returns the configured retrieval k.
func defaultK() int {
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.Retrieval.K > 0 {
			return s.Retrieval.K
		}
	}
	return domain.DefaultSettings().Retrieval.K
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
