package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/sentencecraft/internal/provider"
)

// Lister handles listing the models of one provider
type Lister struct {
	desc   provider.Descriptor
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister for desc
func NewLister(desc provider.Descriptor, apiKey string, doer openai.HTTPDoer) *Lister {
	return &Lister{
		desc:   desc,
		apiKey: apiKey,
		client: provider.NewOpenAIClient(desc, apiKey, doer),
	}
}

// Models returns the sorted model ids the provider reports.
func (l *Lister) Models(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("%s token not found. Set it with 'sentencecraft token set %s' or via the environment", l.desc.ID, l.desc.ID)
	}

	list, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListAvailableModels prints the provider's models, marking the one the
// pipeline uses. filter keeps only ids containing it (case-insensitive).
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer, filter string) error {
	ids, err := l.Models(ctx)
	if err != nil {
		return err
	}

	filter = strings.ToLower(filter)
	fmt.Fprintf(w, "Available %s models:\n", l.desc.ID)

	shown := 0
	for _, id := range ids {
		if filter != "" && !strings.Contains(strings.ToLower(id), filter) {
			continue
		}
		marker := " "
		if id == l.desc.Model {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %s\n", marker, id)
		shown++
	}

	if shown == 0 {
		fmt.Fprintln(w, "  No models found")
	}
	if shown < len(ids) {
		fmt.Fprintf(w, "  ... and %d more models\n", len(ids)-shown)
	}
	return nil
}
