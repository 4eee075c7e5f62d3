package coach

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"codeberg.org/snonux/sentencecraft/internal/credentials"
	"codeberg.org/snonux/sentencecraft/internal/fallback"
	"codeberg.org/snonux/sentencecraft/internal/metrics"
	"codeberg.org/snonux/sentencecraft/internal/provider"
	"codeberg.org/snonux/sentencecraft/internal/vocab"
)

// DefaultProvider is used when no provider is chosen.
const DefaultProvider = provider.DeepSeekID

// Provider is the capability a provider client offers.
type Provider interface {
	Generate(ctx context.Context, word string) (string, error)
	Evaluate(ctx context.Context, word, sentence string) (vocab.SentenceEvaluation, error)
	ValidateCredential(ctx context.Context, token string) bool
}

// SentenceGenerator produces a sentence without a provider.
type SentenceGenerator interface {
	Generate(word string) string
}

// SentenceEvaluator scores a sentence without a provider.
type SentenceEvaluator interface {
	Evaluate(word, sentence string) vocab.SentenceEvaluation
}

// Option configures a Coach.
type Option func(*Coach)

// WithProviders replaces the provider clients entirely.
func WithProviders(providers map[provider.ID]Provider) Option {
	return func(c *Coach) { c.providers = providers }
}

// WithDescriptors builds clients for descs instead of the built-in ones.
func WithDescriptors(descs ...provider.Descriptor) Option {
	return func(c *Coach) { c.descriptors = descs }
}

// WithHTTPClient sets the transport of the built clients.
func WithHTTPClient(doer openai.HTTPDoer) Option {
	return func(c *Coach) { c.httpClient = doer }
}

// WithBreaker sets the circuit breaker settings of the built clients.
func WithBreaker(s provider.BreakerSettings) Option {
	return func(c *Coach) { c.breaker = &s }
}

// WithLanguage sets the feedback language for providers and the fallback
// evaluator.
func WithLanguage(lang vocab.Language) Option {
	return func(c *Coach) { c.lang = lang }
}

// WithGenerator replaces the fallback generator.
func WithGenerator(g SentenceGenerator) Option {
	return func(c *Coach) { c.generator = g }
}

// WithEvaluator replaces the fallback evaluator.
func WithEvaluator(e SentenceEvaluator) Option {
	return func(c *Coach) { c.evaluator = e }
}

// WithMetrics counts outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coach) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Coach) { c.log = log }
}

// Coach generates and evaluates sentences.
type Coach struct {
	store       *credentials.Store
	providers   map[provider.ID]Provider
	descriptors []provider.Descriptor
	httpClient  openai.HTTPDoer
	breaker     *provider.BreakerSettings
	lang        vocab.Language
	generator   SentenceGenerator
	evaluator   SentenceEvaluator
	metrics     *metrics.Metrics
	log         *zap.Logger
}

// New creates a Coach resolving credentials from store.
func New(store *credentials.Store, opts ...Option) *Coach {
	c := &Coach{
		store:       store,
		descriptors: provider.Descriptors(),
		httpClient:  &http.Client{},
		lang:        vocab.English,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.generator == nil {
		c.generator = fallback.NewTimeSeededGenerator()
	}
	if c.evaluator == nil {
		c.evaluator = fallback.NewEvaluator(c.lang)
	}
	if c.providers == nil {
		c.providers = make(map[provider.ID]Provider, len(c.descriptors))
		for _, d := range c.descriptors {
			clientOpts := []provider.Option{
				provider.WithHTTPClient(c.httpClient),
				provider.WithLanguage(c.lang),
				provider.WithLogger(c.log),
			}
			if c.breaker != nil {
				clientOpts = append(clientOpts, provider.WithBreaker(*c.breaker))
			}
			client := provider.NewClient(d, store, clientOpts...)
			c.providers[client.ID()] = client
		}
	}

	return c
}

// Credentials returns the credential store.
func (c *Coach) Credentials() *credentials.Store {
	return c.store
}

// GenerateSentence returns an example sentence for word. A cached sentence
// is returned as is without contacting a provider; otherwise the chosen
// provider is asked and, if that fails for any reason, a template sentence
// is returned.
func (c *Coach) GenerateSentence(ctx context.Context, word vocab.Word, choice provider.ID) string {
	choice = resolve(choice)
	if word.HasSentence() {
		c.metrics.Generation(string(choice), metrics.OutcomeCached)
		return word.Sentence
	}

	log := c.log.With(
		zap.String("call_id", uuid.NewString()),
		zap.String("provider", string(choice)),
		zap.String("word", word.Name))

	p, err := c.provider(choice)
	if err == nil {
		var sentence string
		sentence, err = p.Generate(ctx, word.Name)
		if err == nil {
			log.Debug("generated sentence", zap.String("sentence", sentence))
			c.metrics.Generation(string(choice), metrics.OutcomeProvider)
			return sentence
		}
	}

	c.recordFailure(choice, err)
	log.Warn("sentence generation failed, using fallback template", zap.Error(err))
	c.metrics.Generation(string(choice), metrics.OutcomeFallback)
	return c.generator.Generate(word.Name)
}

// EvaluateUserSentence scores the learner's sentence for word with the
// chosen provider, or with the local heuristics if the provider fails.
func (c *Coach) EvaluateUserSentence(ctx context.Context, word, sentence string, choice provider.ID) vocab.SentenceEvaluation {
	choice = resolve(choice)
	log := c.log.With(
		zap.String("call_id", uuid.NewString()),
		zap.String("provider", string(choice)),
		zap.String("word", word))

	p, err := c.provider(choice)
	if err == nil {
		var eval vocab.SentenceEvaluation
		eval, err = p.Evaluate(ctx, word, sentence)
		if err == nil {
			log.Debug("evaluated sentence", zap.Int("score", eval.Score))
			c.metrics.Evaluation(string(choice), metrics.OutcomeProvider)
			return eval
		}
	}

	c.recordFailure(choice, err)
	log.Warn("sentence evaluation failed, using fallback scoring", zap.Error(err))
	c.metrics.Evaluation(string(choice), metrics.OutcomeFallback)
	return c.evaluator.Evaluate(word, sentence)
}

// SetCredential persists token for the chosen provider.
func (c *Coach) SetCredential(choice provider.ID, token string) error {
	return c.store.Set(string(resolve(choice)), token)
}

// Credential returns the token the chosen provider would use.
func (c *Coach) Credential(choice provider.ID) (string, bool) {
	return c.store.Get(string(resolve(choice)))
}

// ClearCredential removes the persisted token for the chosen provider.
func (c *Coach) ClearCredential(choice provider.ID) error {
	return c.store.Clear(string(resolve(choice)))
}

// ValidateCredential checks token against the chosen provider. It never
// fails; any problem reports false.
func (c *Coach) ValidateCredential(ctx context.Context, choice provider.ID, token string) bool {
	p, err := c.provider(resolve(choice))
	if err != nil {
		return false
	}
	return p.ValidateCredential(ctx, token)
}

func (c *Coach) provider(id provider.ID) (Provider, error) {
	p, ok := c.providers[id]
	if !ok {
		return nil, &unknownProviderError{id: id}
	}
	return p, nil
}

func (c *Coach) recordFailure(id provider.ID, err error) {
	var unknown *unknownProviderError
	kind := "other"
	switch k := provider.KindOf(err); {
	case k != 0:
		kind = k.String()
	case errors.As(err, &unknown):
		kind = "unknown_provider"
	}
	c.metrics.ProviderFailure(string(id), kind)
}

func resolve(choice provider.ID) provider.ID {
	if choice == "" {
		return DefaultProvider
	}
	return choice
}

type unknownProviderError struct {
	id provider.ID
}

func (e *unknownProviderError) Error() string {
	return "unknown provider: " + string(e.id)
}
