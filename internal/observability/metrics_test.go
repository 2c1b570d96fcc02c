package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	r.Observe(ctx, "plate", true, 20*time.Millisecond)
	r.Observe(ctx, "plate", false, time.Millisecond)
	r.Observe(ctx, "", true, time.Second)
	r.CountFiles(ctx, "plate", "classified", 3)
	r.CountFiles(ctx, "plate", "classified", 0)

	if got := testutil.ToFloat64(r.passes.WithLabelValues("plate", "success")); got != 1 {
		t.Fatalf("success passes = %v", got)
	}
	if got := testutil.ToFloat64(r.passes.WithLabelValues("plate", "error")); got != 1 {
		t.Fatalf("error passes = %v", got)
	}
	if got := testutil.ToFloat64(r.files.WithLabelValues("plate", "classified")); got != 3 {
		t.Fatalf("classified files = %v", got)
	}
	if n := testutil.CollectAndCount(r.durations); n != 1 {
		t.Fatalf("histogram series = %d", n)
	}
	if _, err := NewPrometheusRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.Observe(context.Background(), "x", true, time.Second)
	r.CountFiles(context.Background(), "x", "y", 1)
}
