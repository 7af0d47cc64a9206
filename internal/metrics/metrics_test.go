package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.ObserveCommand("CopyItem", OutcomeSuccess, 20*time.Millisecond)
	r.ObserveCommand("CopyItem", OutcomeSuccess, 10*time.Millisecond)
	r.ObserveCommand("CopyItem", OutcomeFailure, time.Millisecond)
	r.CacheLookup(true)
	r.CacheLookup(false)
	r.CacheLookup(false)
	r.BatchItem(OutcomeSuccess)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.commands.WithLabelValues("CopyItem", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.commands.WithLabelValues("CopyItem", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.batchItems.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	first.ObserveCommand("GetItem", OutcomeSuccess, time.Millisecond)
	second.ObserveCommand("GetItem", OutcomeSuccess, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.commands.WithLabelValues("GetItem", OutcomeSuccess)))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveCommand("GetItem", OutcomeSuccess, time.Second)
		r.CacheLookup(true)
		r.BatchItem(OutcomeFailure)
	})
}
