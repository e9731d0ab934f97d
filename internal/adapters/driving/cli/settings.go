package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sitechat/internal/core/domain"
)

// stdin is the reader used by interactive prompts.
var stdin io.Reader = os.Stdin

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking, retrieval and agent options.

Use subcommands to change a single key or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by its config key, for example:

  sitechat settings set chunking.size 800
  sitechat settings set llm.provider ollama
  sitechat settings set llm.base_url https://api.groq.com/openai/v1

Run 'sitechat settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured providers are reachable",
	Long: `Ping the embedding and chat providers with the current settings.
Exits with an error if either cannot be reached.`,
	RunE: runSettingsCheck,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to choose the embedding and chat providers.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g req/s\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Splitter: %s\n", settings.Chunking.Splitter)
	cmd.Printf("  Size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  K: %d\n", settings.Retrieval.K)
	cmd.Printf("  Collection: %s\n", settings.Retrieval.Collection)
	cmd.Println()

	cmd.Println("[Agent]")
	cmd.Printf("  Max steps: %d\n", settings.Agent.MaxSteps)
	if settings.Agent.SystemPrompt != "" {
		cmd.Printf("  System prompt: %s\n", settings.Agent.SystemPrompt)
	} else {
		cmd.Println("  System prompt: (default)")
	}
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printProvider(cmd *cobra.Command, p domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", p.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if p.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, ".api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}
	if err := ensureValidator(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	promptForAPIKeys(cmd, settings)

	embedErr := configValidator.ValidateEmbedding(commandContext(cmd), &settings.Embedding)
	printCheck(cmd, "Embedding", settings.Embedding.Provider, settings.Embedding.Model, embedErr)
	llmErr := configValidator.ValidateLLM(commandContext(cmd), &settings.LLM)
	printCheck(cmd, "LLM", settings.LLM.Provider, settings.LLM.Model, llmErr)

	if embedErr != nil || llmErr != nil {
		return errors.New("provider check failed")
	}
	return nil
}

func printCheck(cmd *cobra.Command, label string, p domain.AIProvider, model string, err error) {
	if err != nil {
		cmd.Printf("%s (%s, %s): %v\n", label, p.Description(), model, err)
		return
	}
	cmd.Printf("%s (%s, %s): ok\n", label, p.Description(), model)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("sitechat Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(stdin)

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	provider, model, apiKey, err := chooseProvider(cmd, reader, domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}
	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	settings.Embedding.BaseURL = ""
	if apiKey != "" {
		settings.Embedding.APIKey = apiKey
	}
	cmd.Println()

	cmd.Println("Step 2: Chat Provider")
	cmd.Println("---------------------")
	provider, model, apiKey, err = chooseProvider(cmd, reader, domain.DefaultLLMModels())
	if err != nil {
		return err
	}
	settings.LLM.Provider = provider
	settings.LLM.Model = model
	settings.LLM.BaseURL = ""
	if apiKey != "" {
		settings.LLM.APIKey = apiKey
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Printf("Embedding: %s (%s)\n", settings.Embedding.Provider.Description(), settings.Embedding.Model)
	cmd.Printf("Chat: %s (%s)\n", settings.LLM.Provider.Description(), settings.LLM.Model)
	return nil
}

// chooseProvider asks for a provider, a model and, when needed, an API key.
// The key may be left empty when OPENAI_API_KEY is set.
func chooseProvider(
	cmd *cobra.Command, reader *bufio.Reader, defaults map[domain.AIProvider]string,
) (domain.AIProvider, string, string, error) {
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use OPENAI_API_KEY): ")
		apiKey = readSecret(reader)
		cmd.Println()
		if apiKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return "", "", "", errors.New("API key is required for this provider")
		}
	}
	return selected, model, apiKey, nil
}

// promptForAPIKeys asks for a missing OpenAI key on an interactive terminal.
// The key is used for this run only and is not saved.
func promptForAPIKeys(cmd *cobra.Command, settings *domain.Settings) {
	needEmbedding := settings.Embedding.Provider.RequiresAPIKey() && settings.Embedding.APIKey == ""
	needLLM := settings.LLM.Provider.RequiresAPIKey() && settings.LLM.APIKey == ""
	if !needEmbedding && !needLLM {
		return
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}

	cmd.PrintErr("Enter API key for OpenAI: ")
	key := readSecret(bufio.NewReader(stdin))
	cmd.PrintErrln()
	if key == "" {
		return
	}
	if needEmbedding {
		settings.Embedding.APIKey = key
	}
	if needLLM {
		settings.LLM.APIKey = key
	}
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo on a terminal, falling back to a line read.
func readSecret(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
