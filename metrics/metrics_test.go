package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/trickstertwo/xscope/logx"
)

func TestObserver_CountsPerRepositoryAndLevel(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg)
	require.NoError(t, err)

	a, b := logx.NewRepository("a"), logx.NewRepository("b")
	obs.Attach(a, b)

	a.Logger("svc").Info().Msg("one")
	a.Logger("svc").Info().Msg("two")
	a.Logger("svc").Error().Msg("three")
	b.Root().Warn().Msg("four")
	a.Logger("svc").Trace().Msg("filtered by root DEBUG")

	require.Equal(t, 2.0, testutil.ToFloat64(obs.Collector().WithLabelValues("a", "info")))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.Collector().WithLabelValues("a", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.Collector().WithLabelValues("b", "warn")))

	want := `
# HELP xscope_log_events_total Log entries emitted, by repository and level.
# TYPE xscope_log_events_total counter
xscope_log_events_total{level="error",repository="a"} 1
xscope_log_events_total{level="info",repository="a"} 2
xscope_log_events_total{level="warn",repository="b"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "xscope_log_events_total"))
}

func TestNewObserver_ReusesRegisteredCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewObserver(reg)
	require.NoError(t, err)
	second, err := NewObserver(reg)
	require.NoError(t, err)
	require.Same(t, first.Collector(), second.Collector())
}
