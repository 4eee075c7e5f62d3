package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(nil)

	m.Generation("deepseek", OutcomeProvider)
	m.Generation("deepseek", OutcomeProvider)
	m.Generation("qwen", OutcomeFallback)
	m.Evaluation("qwen", OutcomeFallback)
	m.ProviderFailure("qwen", "network_failure")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Generations.WithLabelValues("deepseek", OutcomeProvider)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("qwen", OutcomeFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("qwen", OutcomeFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderFailures.WithLabelValues("qwen", "network_failure")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Generation("deepseek", OutcomeCached)
	m.Evaluation("deepseek", OutcomeProvider)
	m.ProviderFailure("deepseek", "parse_failure")
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Generation("deepseek", OutcomeCached)

	path := filepath.Join(t.TempDir(), "sentencecraft.prom")
	require.NoError(t, WriteTextfile(path, reg))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content),
		`sentencecraft_generations_total{outcome="cached",provider="deepseek"} 1`))
}
