package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.NotPanics(t, func() {
		Register(reg)
		Register(reg)
		Register(reg)
	})
}

func TestSegmentHighestPrunedTracksPerLabel(t *testing.T) {
	SegmentHighestPruned.WithLabelValues("headers").Set(100)
	SegmentHighestPruned.WithLabelValues("receipts").Set(200)

	assert.Equal(t, float64(100), testutil.ToFloat64(SegmentHighestPruned.WithLabelValues("headers")))
	assert.Equal(t, float64(200), testutil.ToFloat64(SegmentHighestPruned.WithLabelValues("receipts")))
}

func TestOldestSidecarsHeightGauge(t *testing.T) {
	OldestSidecarsHeight.Set(12345)
	assert.Equal(t, float64(12345), testutil.ToFloat64(OldestSidecarsHeight))
}
