// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramSnapshot reads the sample count and sum of a histogram.
func histogramSnapshot(t *testing.T, h prometheus.Metric) (uint64, float64) {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}

func TestRecordStage(t *testing.T) {
	h := StageDuration.WithLabelValues("decode").(prometheus.Histogram)
	countBefore, sumBefore := histogramSnapshot(t, h)

	RecordStage("decode", 250*time.Millisecond)

	count, sum := histogramSnapshot(t, h)
	if count-countBefore != 1 {
		t.Errorf("decode samples increased by %d, want 1", count-countBefore)
	}
	if d := sum - sumBefore; d < 0.2499 || d > 0.2501 {
		t.Errorf("decode sum increased by %v, want 0.25", d)
	}
}

func TestRecordFocusScore(t *testing.T) {
	countBefore, sumBefore := histogramSnapshot(t, FocusScore)

	RecordFocusScore(40)
	RecordFocusScore(100)

	count, sum := histogramSnapshot(t, FocusScore)
	if count-countBefore != 2 || sum-sumBefore != 140 {
		t.Errorf("focus score histogram moved by %d samples / %v, want 2 / 140", count-countBefore, sum-sumBefore)
	}
}

func TestRecordFrameDropped(t *testing.T) {
	before := testutil.ToFloat64(FramesDropped.WithLabelValues(DropSuperseded))
	RecordFrameDropped(DropSuperseded)
	RecordFrameDropped(DropSuperseded)
	after := testutil.ToFloat64(FramesDropped.WithLabelValues(DropSuperseded))

	if after-before != 2 {
		t.Errorf("superseded drops increased by %v, want 2", after-before)
	}
}

func TestRecordFrameProcessed(t *testing.T) {
	before := testutil.ToFloat64(FramesProcessed.WithLabelValues(OutcomeNoFace))
	RecordFrameProcessed(OutcomeNoFace)
	if got := testutil.ToFloat64(FramesProcessed.WithLabelValues(OutcomeNoFace)) - before; got != 1 {
		t.Errorf("no_face outcome increased by %v, want 1", got)
	}
}

func TestRecordEventPublish(t *testing.T) {
	okBefore := testutil.ToFloat64(EventsPublished)
	failBefore := testutil.ToFloat64(EventsPublishFailed)

	RecordEventPublish(nil)
	RecordEventPublish(errors.New("broker closed"))

	if got := testutil.ToFloat64(EventsPublished) - okBefore; got != 1 {
		t.Errorf("published increased by %v, want 1", got)
	}
	if got := testutil.ToFloat64(EventsPublishFailed) - failBefore; got != 1 {
		t.Errorf("failed increased by %v, want 1", got)
	}
}

func TestTrackSession(t *testing.T) {
	before := testutil.ToFloat64(SessionsActive)
	TrackSession(true)
	TrackSession(true)
	TrackSession(false)
	if got := testutil.ToFloat64(SessionsActive) - before; got != 1 {
		t.Errorf("active sessions changed by %v, want 1", got)
	}
	TrackSession(false)
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/generate-quiz", "200"))
	RecordAPIRequest("POST", "/generate-quiz", "200", 120*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/generate-quiz", "200")) - before; got != 1 {
		t.Errorf("request counter increased by %v, want 1", got)
	}
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("gemini", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("gemini")); got != 2 {
		t.Errorf("breaker gauge = %v, want 2", got)
	}
}

func TestSetWorkersAlive(t *testing.T) {
	SetWorkersAlive(3)
	if got := testutil.ToFloat64(LandmarkWorkersAlive); got != 3 {
		t.Errorf("workers alive = %v, want 3", got)
	}
}
