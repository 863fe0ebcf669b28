package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector_InstancesAreIndependent(t *testing.T) {
	c1 := NewCollector("flowboard")
	c2 := NewCollector("flowboard")

	require.NotSame(t, c1, c2)
	require.NotSame(t, c1.Registry(), c2.Registry())

	c1.NodesCreated.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(c1.NodesCreated))
	assert.Equal(t, float64(0), testutil.ToFloat64(c2.NodesCreated))
}

func TestNewCollector_RegistersAllMetrics(t *testing.T) {
	c := NewCollector("flowboard")
	c.HTTPRequests.WithLabelValues("GET", "/api/v1/workflow", "200").Inc()
	c.Polls.WithLabelValues("completed").Inc()

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
