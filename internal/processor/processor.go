package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"codeberg.org/snonux/sentencecraft/internal/batch"
	"codeberg.org/snonux/sentencecraft/internal/cli"
	"codeberg.org/snonux/sentencecraft/internal/coach"
	"codeberg.org/snonux/sentencecraft/internal/credentials"
	"codeberg.org/snonux/sentencecraft/internal/kvstore"
	"codeberg.org/snonux/sentencecraft/internal/logging"
	"codeberg.org/snonux/sentencecraft/internal/metrics"
	"codeberg.org/snonux/sentencecraft/internal/models"
	"codeberg.org/snonux/sentencecraft/internal/provider"
	"codeberg.org/snonux/sentencecraft/internal/vocab"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Option configures a Processor.
type Option func(*Processor)

// WithKV replaces the SQLite token store, e.g. with kvstore.NewMemory.
func WithKV(kv credentials.KV) Option {
	return func(p *Processor) { p.kv = kv }
}

// WithOutput sets where results are written (default stdout).
func WithOutput(w io.Writer) Option {
	return func(p *Processor) { p.out = w }
}

// WithStatus sets where progress and summaries are written (default stderr).
func WithStatus(w io.Writer) Option {
	return func(p *Processor) { p.status = w }
}

// WithLogger replaces the logger built from the flags.
func WithLogger(log *zap.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// WithHTTPClient sets the HTTP client used for all provider calls.
func WithHTTPClient(doer openai.HTTPDoer) Option {
	return func(p *Processor) { p.httpClient = doer }
}

// WithDescriptors replaces the built-in provider descriptors.
func WithDescriptors(descs ...provider.Descriptor) Option {
	return func(p *Processor) { p.descriptors = descs }
}

// Processor handles the command line flows
type Processor struct {
	flags       *cli.Flags
	coach       *coach.Coach
	kv          credentials.KV
	closer      io.Closer
	registry    *prometheus.Registry
	log         *zap.Logger
	out         io.Writer
	status      io.Writer
	httpClient  openai.HTTPDoer
	descriptors []provider.Descriptor
}

// NewProcessor creates a new processor from flags
func NewProcessor(flags *cli.Flags, opts ...Option) (*Processor, error) {
	p := &Processor{
		flags:       flags,
		out:         os.Stdout,
		status:      os.Stderr,
		descriptors: provider.Descriptors(),
	}
	for _, opt := range opts {
		opt(p)
	}

	switch flags.OutputFormat {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unsupported output format %q (use text, json or yaml)", flags.OutputFormat)
	}

	lang, err := vocab.ParseLanguage(flags.Language)
	if err != nil {
		return nil, err
	}

	if p.log == nil {
		if p.log, err = logging.New(flags.LogLevel, flags.LogJSON); err != nil {
			return nil, err
		}
	}

	if p.kv == nil {
		db, err := kvstore.Open(flags.StorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open token store: %w", err)
		}
		p.kv = db
		p.closer = db
	}

	p.registry = prometheus.NewRegistry()
	store := credentials.New(p.kv, cli.DefaultCredentials(), p.log)

	coachOpts := []coach.Option{
		coach.WithDescriptors(p.descriptors...),
		coach.WithLanguage(lang),
		coach.WithMetrics(metrics.New(p.registry)),
		coach.WithLogger(p.log),
	}
	if p.httpClient != nil {
		coachOpts = append(coachOpts, coach.WithHTTPClient(p.httpClient))
	}
	p.coach = coach.New(store, coachOpts...)

	return p, nil
}

// Close writes the metrics file if requested and releases the token store.
func (p *Processor) Close() error {
	var errs []error
	if p.flags.MetricsFile != "" {
		if err := metrics.WriteTextfile(p.flags.MetricsFile, p.registry); err != nil {
			errs = append(errs, err)
		}
	}
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close token store: %w", err))
		}
	}
	_ = p.log.Sync()
	return errors.Join(errs...)
}

func (p *Processor) providerID() provider.ID {
	if p.flags.Provider == "" {
		return coach.DefaultProvider
	}
	return provider.ID(p.flags.Provider)
}

// descriptor looks up a configured provider; an empty id means the default.
func (p *Processor) descriptor(id string) (provider.Descriptor, error) {
	if id == "" {
		id = string(coach.DefaultProvider)
	}
	for _, d := range p.descriptors {
		if string(d.ID) == id {
			return d, nil
		}
	}
	return provider.Descriptor{}, fmt.Errorf("unknown provider %q (known: %v)", id, provider.IDs())
}

type sentenceOutput struct {
	Word     string `json:"word" yaml:"word"`
	Sentence string `json:"sentence" yaml:"sentence"`
	Cached   bool   `json:"cached" yaml:"cached"`
}

// Generate prints an example sentence for word. A sentence given with
// --sentence is kept as the cached result.
func (p *Processor) Generate(ctx context.Context, word string) error {
	w := vocab.Word{Name: word, Sentence: p.flags.Sentence}
	res := sentenceOutput{
		Word:     word,
		Sentence: p.coach.GenerateSentence(ctx, w, p.providerID()),
		Cached:   w.HasSentence(),
	}
	return p.render(res, func(out io.Writer) error {
		_, err := fmt.Fprintln(out, res.Sentence)
		return err
	})
}

type evaluationOutput struct {
	Word     string `json:"word" yaml:"word"`
	Sentence string `json:"sentence" yaml:"sentence"`

	vocab.SentenceEvaluation `yaml:",inline"`
}

// Evaluate scores the learner's sentence for word.
func (p *Processor) Evaluate(ctx context.Context, word, sentence string) error {
	res := evaluationOutput{
		Word:               word,
		Sentence:           sentence,
		SentenceEvaluation: p.coach.EvaluateUserSentence(ctx, word, sentence, p.providerID()),
	}
	return p.render(res, func(out io.Writer) error {
		score := scoreStyle(lipgloss.NewRenderer(out), res.Score).
			Render(fmt.Sprintf("%d/%d", res.Score, vocab.MaxScore))
		_, err := fmt.Fprintf(out, "Score: %s\nFeedback: %s\n", score, res.Feedback)
		return err
	})
}

// scoreStyle colors a score red below 5, yellow below 8 and green above.
// Writers that are not terminals get the text unstyled.
func scoreStyle(r *lipgloss.Renderer, score int) lipgloss.Style {
	color := "2"
	switch {
	case score < 5:
		color = "1"
	case score < 8:
		color = "3"
	}
	return r.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

// Batch generates sentences for every word in file, keeping cached ones.
func (p *Processor) Batch(ctx context.Context, file string) error {
	words, err := batch.ReadBatchFile(file)
	if err != nil {
		return err
	}

	results := make([]batch.Result, 0, len(words))
	cachedCount := 0
	for i, w := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(p.status, "Processing %d/%d: %s\n", i+1, len(words), w.Name)
		r := batch.Result{
			Word:     w.Name,
			Sentence: p.coach.GenerateSentence(ctx, w, p.providerID()),
			Cached:   w.HasSentence(),
		}
		if r.Cached {
			cachedCount++
		}
		results = append(results, r)
	}

	out := p.out
	if p.flags.OutFile != "" {
		f, err := os.Create(p.flags.OutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := p.renderTo(out, results, func(w io.Writer) error {
		return batch.WriteResults(w, results)
	}); err != nil {
		return err
	}

	// Print summary
	fmt.Fprintf(p.status, "\n=== Batch Summary ===\n")
	fmt.Fprintf(p.status, "Total words: %d\n", len(results))
	fmt.Fprintf(p.status, "Generated: %d\n", len(results)-cachedCount)
	fmt.Fprintf(p.status, "Cached (kept): %d\n", cachedCount)
	fmt.Fprintf(p.status, "=====================\n")
	return nil
}

type tokenOutput struct {
	Provider string             `json:"provider" yaml:"provider"`
	Token    string             `json:"token,omitempty" yaml:"token,omitempty"`
	Source   credentials.Source `json:"source" yaml:"source"`
}

// SetToken persists a token for a provider.
func (p *Processor) SetToken(providerID, token string) error {
	d, err := p.descriptor(providerID)
	if err != nil {
		return err
	}
	if err := p.coach.SetCredential(d.ID, token); err != nil {
		return fmt.Errorf("failed to store %s token: %w", d.ID, err)
	}
	fmt.Fprintf(p.status, "Stored %s token %s\n", d.ID, credentials.Mask(token))
	if p.coach.Credentials().Source(string(d.ID)) == credentials.SourceEnv {
		fmt.Fprintf(p.status, "Note: the environment token for %s still takes precedence\n", d.ID)
	}
	return nil
}

// ShowToken prints the masked token a provider resolves to and its source.
func (p *Processor) ShowToken(providerID string) error {
	d, err := p.descriptor(providerID)
	if err != nil {
		return err
	}
	res := tokenOutput{
		Provider: string(d.ID),
		Source:   p.coach.Credentials().Source(string(d.ID)),
	}
	if token, ok := p.coach.Credential(d.ID); ok {
		res.Token = credentials.Mask(token)
	}
	return p.render(res, func(out io.Writer) error {
		if res.Source == credentials.SourceNone {
			_, err := fmt.Fprintf(out, "%s: not set\n", res.Provider)
			return err
		}
		_, err := fmt.Fprintf(out, "%s: %s (%s)\n", res.Provider, res.Token, res.Source)
		return err
	})
}

// ClearToken removes the persisted token of a provider.
func (p *Processor) ClearToken(providerID string) error {
	d, err := p.descriptor(providerID)
	if err != nil {
		return err
	}
	if err := p.coach.ClearCredential(d.ID); err != nil {
		return fmt.Errorf("failed to clear %s token: %w", d.ID, err)
	}
	fmt.Fprintf(p.status, "Cleared stored %s token\n", d.ID)
	return nil
}

// ValidateToken checks token, or the resolved token when empty, against
// the provider. A rejected token is reported as an error.
func (p *Processor) ValidateToken(ctx context.Context, providerID, token string) error {
	d, err := p.descriptor(providerID)
	if err != nil {
		return err
	}
	if token == "" {
		var ok bool
		if token, ok = p.coach.Credential(d.ID); !ok {
			return fmt.Errorf("no %s token to validate. Pass one or set it with 'sentencecraft token set %s'", d.ID, d.ID)
		}
	}
	if !p.coach.ValidateCredential(ctx, d.ID, token) {
		return fmt.Errorf("%s rejected token %s", d.ID, credentials.Mask(token))
	}
	fmt.Fprintf(p.out, "%s token %s is valid\n", d.ID, credentials.Mask(token))
	return nil
}

// ListModels prints the models available to the provider's token.
func (p *Processor) ListModels(ctx context.Context, providerID string) error {
	d, err := p.descriptor(providerID)
	if err != nil {
		return err
	}
	token, _ := p.coach.Credential(d.ID)
	return models.NewLister(d, token, p.httpClient).ListAvailableModels(ctx, p.out, p.flags.ModelFilter)
}

func (p *Processor) render(v any, text func(io.Writer) error) error {
	return p.renderTo(p.out, v, text)
}

func (p *Processor) renderTo(out io.Writer, v any, text func(io.Writer) error) error {
	switch p.flags.OutputFormat {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(out)
	}
}
