package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/sentencecraft/internal/parse"
	"codeberg.org/snonux/sentencecraft/internal/prompt"
	"codeberg.org/snonux/sentencecraft/internal/vocab"
)

// TokenSource resolves the credential for a provider.
type TokenSource interface {
	Get(providerID string) (string, bool)
}

// BreakerSettings configures the per-client circuit breaker. A zero
// ConsecutiveFailures disables it.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// DefaultBreakerSettings trips after five consecutive network failures and
// probes again after thirty seconds.
var DefaultBreakerSettings = BreakerSettings{
	ConsecutiveFailures: 5,
	OpenTimeout:         30 * time.Second,
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for provider calls.
func WithHTTPClient(doer openai.HTTPDoer) Option {
	return func(c *Client) { c.httpClient = doer }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithLanguage sets the language evaluation feedback is requested in.
func WithLanguage(lang vocab.Language) Option {
	return func(c *Client) { c.lang = lang }
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) { c.breaker = s }
}

// Client talks to one chat-completion provider.
type Client struct {
	desc       Descriptor
	tokens     TokenSource
	httpClient openai.HTTPDoer
	lang       vocab.Language
	log        *zap.Logger
	breaker    BreakerSettings
	cb         *gobreaker.CircuitBreaker
}

// NewClient creates a client for desc, resolving tokens from tokens.
func NewClient(desc Descriptor, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		desc:       desc,
		tokens:     tokens,
		httpClient: &http.Client{},
		lang:       vocab.English,
		log:        zap.NewNop(),
		breaker:    DefaultBreakerSettings,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.breaker.ConsecutiveFailures > 0 {
		threshold := c.breaker.ConsecutiveFailures
		log := c.log
		c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    string(desc.ID),
			Timeout: c.breaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return !countsAsBreakerFailure(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("provider circuit breaker state changed",
					zap.String("provider", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}

	return c
}

// ID returns the provider id.
func (c *Client) ID() ID { return c.desc.ID }

// Generate asks the provider for one example sentence using word.
func (c *Client) Generate(ctx context.Context, word string) (string, error) {
	content, err := c.complete(ctx, prompt.Generation(word), GenerationMaxTokens, c.desc.GenerationTemperature)
	if err != nil {
		return "", err
	}

	sentence, err := parse.Sentence(content)
	if err != nil {
		return "", newError(KindParseFailure, c.desc.ID, err)
	}
	return sentence, nil
}

// Evaluate asks the provider to score sentence against word.
func (c *Client) Evaluate(ctx context.Context, word, sentence string) (vocab.SentenceEvaluation, error) {
	content, err := c.complete(ctx, prompt.Evaluation(word, sentence, c.lang), EvaluationMaxTokens, c.desc.EvaluationTemperature)
	if err != nil {
		return vocab.SentenceEvaluation{}, err
	}

	eval, err := parse.Evaluation(content)
	if err != nil {
		return vocab.SentenceEvaluation{}, newError(KindParseFailure, c.desc.ID, err)
	}
	return eval, nil
}

// ValidateCredential sends a minimal request with token and reports whether
// the provider answered with a success status. The reply body is ignored
// and transport errors yield false.
func (c *Client) ValidateCredential(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	rec := &statusRecorder{doer: c.httpClient}
	client := NewOpenAIClient(c.desc, token, rec)

	_, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.desc.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.Validation},
		},
		MaxTokens: ValidationMaxTokens,
	})
	if err != nil {
		c.log.Debug("credential validation request returned an error",
			zap.String("provider", string(c.desc.ID)), zap.Int("status", rec.status), zap.Error(err))
	}
	return rec.status >= 200 && rec.status < 300
}

func (c *Client) complete(ctx context.Context, text string, maxTokens int, temperature float32) (string, error) {
	token, ok := c.tokens.Get(string(c.desc.ID))
	if !ok {
		return "", newError(KindCredentialMissing, c.desc.ID,
			fmt.Errorf("no %s token configured", c.desc.ID))
	}

	client := NewOpenAIClient(c.desc, token, c.httpClient)
	req := openai.ChatCompletionRequest{
		Model: c.desc.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	c.log.Debug("sending chat completion",
		zap.String("provider", string(c.desc.ID)),
		zap.String("model", c.desc.Model),
		zap.Int("max_tokens", maxTokens))

	resp, err := c.execute(func() (openai.ChatCompletionResponse, error) {
		return client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", newError(classifyCallError(err), c.desc.ID, err)
	}

	if len(resp.Choices) == 0 {
		return "", newError(KindParseFailure, c.desc.ID, fmt.Errorf("reply has no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) execute(call func() (openai.ChatCompletionResponse, error)) (openai.ChatCompletionResponse, error) {
	if c.cb == nil {
		return call()
	}
	out, err := c.cb.Execute(func() (interface{}, error) {
		return call()
	})
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return out.(openai.ChatCompletionResponse), nil
}

// NewOpenAIClient builds a go-openai client pointed at desc's endpoint.
func NewOpenAIClient(desc Descriptor, token string, doer openai.HTTPDoer) *openai.Client {
	cfg := openai.DefaultConfig(token)
	cfg.BaseURL = desc.EndpointURL
	if doer != nil {
		cfg.HTTPClient = doer
	}
	return openai.NewClientWithConfig(cfg)
}

// statusRecorder remembers the status code of the last response.
type statusRecorder struct {
	doer   openai.HTTPDoer
	status int
}

func (r *statusRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := r.doer.Do(req)
	if err != nil {
		return nil, err
	}
	r.status = resp.StatusCode
	return resp, nil
}
