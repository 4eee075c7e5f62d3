package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type call struct {
	name string
	args []string
}

type fakeApp struct {
	calls  []call
	closed int
	err    error
}

func (f *fakeApp) record(name string, args ...string) error {
	f.calls = append(f.calls, call{name, args})
	return f.err
}

func (f *fakeApp) Generate(_ context.Context, word string) error {
	return f.record("generate", word)
}

func (f *fakeApp) Evaluate(_ context.Context, word, sentence string) error {
	return f.record("evaluate", word, sentence)
}

func (f *fakeApp) Batch(_ context.Context, file string) error {
	return f.record("batch", file)
}

func (f *fakeApp) SetToken(id, token string) error {
	return f.record("token-set", id, token)
}

func (f *fakeApp) ShowToken(id string) error {
	return f.record("token-get", id)
}

func (f *fakeApp) ClearToken(id string) error {
	return f.record("token-clear", id)
}

func (f *fakeApp) ListModels(_ context.Context, id string) error {
	return f.record("models", id)
}

func (f *fakeApp) ValidateToken(_ context.Context, id, token string) error {
	return f.record("token-validate", id, token)
}

func (f *fakeApp) Close() error {
	f.closed++
	return nil
}

func runCommand(t *testing.T, app *fakeApp, args ...string) (*Flags, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	flags := NewFlags()
	cmd := CreateRootCommand(flags, func() (App, error) { return app, nil })
	cmd.SetArgs(args)
	return flags, cmd.Execute()
}

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags, nil)

	if cmd.Use != "sentencecraft" {
		t.Errorf("Expected Use to be 'sentencecraft', got %s", cmd.Use)
	}

	seen := map[string]bool{}
	cmd.PersistentFlags().VisitAll(func(f *pflag.Flag) { seen[f.Name] = true })

	flagNames := []string{"config", "provider", "language", "store", "output", "log-level", "log-json", "metrics-file"}
	for _, name := range flagNames {
		t.Run("flag_"+name, func(t *testing.T) {
			if !seen[name] {
				t.Errorf("Expected persistent flag %s to exist", name)
			}
		})
	}

	for _, name := range []string{"generate", "evaluate", "batch", "models", "token"} {
		t.Run("command_"+name, func(t *testing.T) {
			found, _, err := cmd.Find([]string{name})
			if err != nil || found.Name() != name {
				t.Errorf("Expected subcommand %s, got %v (err %v)", name, found, err)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())

	storeFlag := cmd.PersistentFlags().Lookup("store")
	if storeFlag == nil {
		t.Fatal("store flag not found")
	}
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".local", "state", "sentencecraft", "credentials.db")
	if storeFlag.DefValue != expected {
		t.Errorf("Expected default store to be %s, got %s", expected, storeFlag.DefValue)
	}

	outputFlag := cmd.PersistentFlags().Lookup("output")
	if outputFlag.DefValue != "text" || outputFlag.Shorthand != "o" {
		t.Errorf("Unexpected output flag: default %q shorthand %q", outputFlag.DefValue, outputFlag.Shorthand)
	}
}

func TestCommandDispatch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want call
	}{
		{"generate", []string{"generate", "apple"}, call{"generate", []string{"apple"}}},
		{"evaluate joins words", []string{"evaluate", "apple", "I", "eat", "an", "apple."}, call{"evaluate", []string{"apple", "I eat an apple."}}},
		{"batch", []string{"batch", "words.txt"}, call{"batch", []string{"words.txt"}}},
		{"models uses provider flag", []string{"--provider", "qwen", "models"}, call{"models", []string{"qwen"}}},
		{"token set", []string{"token", "set", "qwen", "hf_abc"}, call{"token-set", []string{"qwen", "hf_abc"}}},
		{"token get", []string{"token", "get", "deepseek"}, call{"token-get", []string{"deepseek"}}},
		{"token clear", []string{"token", "clear", "deepseek"}, call{"token-clear", []string{"deepseek"}}},
		{"token validate resolved", []string{"token", "validate", "deepseek"}, call{"token-validate", []string{"deepseek", ""}}},
		{"token validate explicit", []string{"token", "validate", "qwen", "hf_x"}, call{"token-validate", []string{"qwen", "hf_x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &fakeApp{}
			if _, err := runCommand(t, app, tt.args...); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if len(app.calls) != 1 || !reflect.DeepEqual(app.calls[0], tt.want) {
				t.Errorf("calls = %v, want [%v]", app.calls, tt.want)
			}
			if app.closed != 1 {
				t.Errorf("Close called %d times, want 1", app.closed)
			}
		})
	}
}

func TestCommandArgsValidation(t *testing.T) {
	for _, args := range [][]string{
		{"generate"},
		{"evaluate", "apple"},
		{"batch"},
		{"token", "set", "qwen"},
		{"models", "extra"},
	} {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			app := &fakeApp{}
			if _, err := runCommand(t, app, args...); err == nil {
				t.Errorf("Expected an argument error for %v", args)
			}
			if len(app.calls) != 0 {
				t.Errorf("App should not be called, got %v", app.calls)
			}
		})
	}
}

func TestCommandPropagatesAppError(t *testing.T) {
	app := &fakeApp{err: errors.New("boom")}
	_, err := runCommand(t, app, "generate", "apple")
	if err == nil || err.Error() != "boom" {
		t.Errorf("Execute() error = %v, want boom", err)
	}
	if app.closed != 1 {
		t.Errorf("Close called %d times, want 1", app.closed)
	}
}

func TestCommandFactoryError(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := CreateRootCommand(NewFlags(), func() (App, error) { return nil, errors.New("no store") })
	cmd.SetArgs([]string{"generate", "apple"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "no store") {
		t.Errorf("Execute() error = %v, want factory error", err)
	}
}

func TestApplyConfig(t *testing.T) {
	app := &fakeApp{}
	flags, err := runCommand(t, app, "--language", "zh", "-o", "yaml", "--log-level", "debug", "generate", "apple")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if flags.Language != "zh" {
		t.Errorf("Language = %q, want zh", flags.Language)
	}
	if flags.OutputFormat != "yaml" {
		t.Errorf("OutputFormat = %q, want yaml", flags.OutputFormat)
	}
	if flags.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", flags.LogLevel)
	}
	if flags.Provider != "deepseek" {
		t.Errorf("Provider = %q, want default deepseek", flags.Provider)
	}
}

func TestApplyConfigFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `provider: qwen
language: zh
output:
  format: json`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	flags := NewFlags()
	app := &fakeApp{}
	cmd := CreateRootCommand(flags, func() (App, error) { return app, nil })
	InitConfig(cfgPath)
	cmd.SetArgs([]string{"models"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if flags.Provider != "qwen" || flags.Language != "zh" || flags.OutputFormat != "json" {
		t.Errorf("flags = %+v, want provider qwen, language zh, output json", flags)
	}
	if got := app.calls[0].args[0]; got != "qwen" {
		t.Errorf("models called with %q, want qwen", got)
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `providers:
  deepseek:
    api_key: test-key`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
		},
		{
			name:      "without config file",
			setupFunc: func(t *testing.T) string { return "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			InitConfig(tt.setupFunc(t))

			// Test environment variable prefix
			t.Setenv("SENTENCECRAFT_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}

func TestDefaultCredentials(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		config   map[string]string
		expected map[string]string
	}{
		{
			name:     "from environment",
			env:      map[string]string{"DEEPSEEK_API_KEY": "env-ds", "HF_TOKEN": "env-hf"},
			config:   map[string]string{"providers.deepseek.api_key": "cfg-ds"},
			expected: map[string]string{"deepseek": "env-ds", "qwen": "env-hf"},
		},
		{
			name:     "from config when no env",
			config:   map[string]string{"providers.qwen.api_key": "cfg-hf"},
			expected: map[string]string{"qwen": "cfg-hf"},
		},
		{
			name:     "empty when neither set",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			for _, key := range []string{"DEEPSEEK_API_KEY", "HF_TOKEN"} {
				t.Setenv(key, tt.env[key])
			}
			for key, value := range tt.config {
				viper.Set(key, value)
			}

			got := DefaultCredentials()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("DefaultCredentials() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())

	cmd.PersistentFlags().Set("store", "/test/creds.db")
	cmd.PersistentFlags().Set("provider", "qwen")
	cmd.PersistentFlags().Set("metrics-file", "/test/metrics.prom")

	if viper.GetString("store.path") != "/test/creds.db" {
		t.Errorf("Expected store.path to be /test/creds.db, got %s", viper.GetString("store.path"))
	}
	if viper.GetString("provider") != "qwen" {
		t.Errorf("Expected provider to be qwen, got %s", viper.GetString("provider"))
	}
	if viper.GetString("metrics.file") != "/test/metrics.prom" {
		t.Errorf("Expected metrics.file to be /test/metrics.prom, got %s", viper.GetString("metrics.file"))
	}
}
