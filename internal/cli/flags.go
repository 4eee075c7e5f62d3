package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile      string
	Provider     string
	Language     string
	StorePath    string
	OutputFormat string
	LogLevel     string
	LogJSON      bool
	MetricsFile  string

	// Command specific flags
	Sentence    string // generate: cached sentence to keep
	OutFile     string // batch: result file instead of stdout
	ModelFilter string // models: substring filter
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Provider:     "deepseek",
		Language:     "en",
		OutputFormat: "text",
		LogLevel:     "warn",
	}
}
