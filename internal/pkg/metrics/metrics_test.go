package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegisterMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, MustRegisterMetrics)
	assert.NotPanics(t, MustRegisterMetrics)

	RebalanceRequestsTotal.WithLabelValues("balanced", "valid").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["rebalancer_rebalance_requests_total"])
}
