package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/sentencecraft/internal"
)

// App is what the commands drive. It is created after configuration has
// been loaded and closed when the command finishes.
type App interface {
	Generate(ctx context.Context, word string) error
	Evaluate(ctx context.Context, word, sentence string) error
	Batch(ctx context.Context, file string) error
	SetToken(providerID, token string) error
	ShowToken(providerID string) error
	ClearToken(providerID string) error
	ValidateToken(ctx context.Context, providerID, token string) error
	ListModels(ctx context.Context, providerID string) error
	Close() error
}

// AppFactory builds the App once flags and configuration are final.
type AppFactory func() (App, error)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, newApp AppFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sentencecraft",
		Short: "Vocabulary example sentences and sentence scoring",
		Long: `sentencecraft generates example sentences for vocabulary words and
scores your own sentences against a weighted rubric.

It uses the DeepSeek or Qwen (HuggingFace router) chat APIs and falls back
to local templates and heuristics whenever a provider is unavailable.

Examples:
  sentencecraft generate apple                      # Example sentence for "apple"
  sentencecraft evaluate apple "I eat an apple."    # Score your sentence
  sentencecraft batch words.txt                     # Sentences for a word list
  sentencecraft token set qwen hf_xxx               # Store a provider token`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	setupFlags(rootCmd, flags)

	run := func(fn func(app App) error) error {
		ApplyConfig(flags)
		app, err := newApp()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := app.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", cerr)
			}
		}()
		return fn(app)
	}

	generateCmd := &cobra.Command{
		Use:   "generate <word>",
		Short: "Generate an example sentence for a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(app App) error { return app.Generate(cmd.Context(), args[0]) })
		},
	}
	generateCmd.Flags().StringVar(&flags.Sentence, "sentence", "", "Existing sentence for the word; returned unchanged")

	evaluateCmd := &cobra.Command{
		Use:   "evaluate <word> <sentence...>",
		Short: "Score your own sentence for a word",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sentence := strings.Join(args[1:], " ")
			return run(func(app App) error { return app.Evaluate(cmd.Context(), args[0], sentence) })
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Generate sentences for every word in a file (one per line, 'word' or 'word = sentence')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(app App) error { return app.Batch(cmd.Context(), args[0]) })
		},
	}
	batchCmd.Flags().StringVar(&flags.OutFile, "out", "", "Write results to this file instead of stdout")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List the models available to the configured provider token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(app App) error { return app.ListModels(cmd.Context(), flags.Provider) })
		},
	}
	modelsCmd.Flags().StringVar(&flags.ModelFilter, "filter", "", "Only show model ids containing this text")

	rootCmd.AddCommand(generateCmd, evaluateCmd, batchCmd, modelsCmd, createTokenCommand(run))

	return rootCmd
}

func createTokenCommand(run func(func(App) error) error) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage provider tokens",
	}

	tokenCmd.AddCommand(
		&cobra.Command{
			Use:   "set <provider> <token>",
			Short: "Store a token for a provider",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(func(app App) error { return app.SetToken(args[0], args[1]) })
			},
		},
		&cobra.Command{
			Use:   "get <provider>",
			Short: "Show which token a provider resolves to (masked)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(func(app App) error { return app.ShowToken(args[0]) })
			},
		},
		&cobra.Command{
			Use:   "clear <provider>",
			Short: "Remove the stored token for a provider",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(func(app App) error { return app.ClearToken(args[0]) })
			},
		},
		&cobra.Command{
			Use:   "validate <provider> [token]",
			Short: "Check a token against the provider (defaults to the resolved token)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				token := ""
				if len(args) == 2 {
					token = args[1]
				}
				return run(func(app App) error { return app.ValidateToken(cmd.Context(), args[0], token) })
			},
		},
	)

	return tokenCmd
}

// DefaultStorePath is where tokens are persisted unless configured otherwise.
func DefaultStorePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "sentencecraft", "credentials.db")
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.sentencecraft.yaml)")
	pf.StringVarP(&flags.Provider, "provider", "p", flags.Provider, "Provider: deepseek or qwen")
	pf.StringVarP(&flags.Language, "language", "l", flags.Language, "Feedback language: en or zh")
	pf.StringVar(&flags.StorePath, "store", DefaultStorePath(), "Token store (SQLite file)")
	pf.StringVarP(&flags.OutputFormat, "output", "o", flags.OutputFormat, "Output format: text, json or yaml")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	pf.BoolVar(&flags.LogJSON, "log-json", false, "Log as JSON instead of console text")
	pf.StringVar(&flags.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag("provider", pf.Lookup("provider"))
	viper.BindPFlag("language", pf.Lookup("language"))
	viper.BindPFlag("store.path", pf.Lookup("store"))
	viper.BindPFlag("output.format", pf.Lookup("output"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.json", pf.Lookup("log-json"))
	viper.BindPFlag("metrics.file", pf.Lookup("metrics-file"))
}

// ApplyConfig copies the values viper resolved (flag, config file or
// environment) back into flags.
func ApplyConfig(flags *Flags) {
	flags.Provider = viper.GetString("provider")
	flags.Language = viper.GetString("language")
	flags.StorePath = viper.GetString("store.path")
	flags.OutputFormat = viper.GetString("output.format")
	flags.LogLevel = viper.GetString("log.level")
	flags.LogJSON = viper.GetBool("log.json")
	flags.MetricsFile = viper.GetString("metrics.file")
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".sentencecraft" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sentencecraft")
	}

	// Environment variables
	viper.SetEnvPrefix("SENTENCECRAFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// credentialEnv lists the well-known environment variables per provider.
var credentialEnv = map[string]string{
	"deepseek": "DEEPSEEK_API_KEY",
	"qwen":     "HF_TOKEN",
}

// DefaultCredentials returns the environment-supplied provider tokens: the
// well-known variable first, then providers.<id>.api_key from the config
// file or SENTENCECRAFT_PROVIDERS_<ID>_API_KEY.
func DefaultCredentials() map[string]string {
	defaults := make(map[string]string, len(credentialEnv))
	for id, env := range credentialEnv {
		if key := os.Getenv(env); key != "" {
			defaults[id] = key
			continue
		}
		if key := viper.GetString("providers." + id + ".api_key"); key != "" {
			defaults[id] = key
		}
	}
	return defaults
}
