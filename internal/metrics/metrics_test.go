package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordRequest("all", "ok")
	r.RecordRequest("all", "ok")
	r.RecordRequest("dates", "NOT_FOUND")
	r.RecordStage("fetching", 20*time.Millisecond)
	r.RecordFilled(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("all", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("dates", "NOT_FOUND")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.filled))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordRequest("all", "ok")
		r.RecordStage("parsing", time.Millisecond)
		r.RecordFilled(1)
	})
}
