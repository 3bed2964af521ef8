package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.LawyerSearch(true)
	m.LawyerSearch(false)
	m.LawyerSearch(false)
	m.ChatMessage(true)
	m.EventFailed("chat.message.created")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.lawyerSearches.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lawyerSearches.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatMessages.WithLabelValues("first")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventFailures.WithLabelValues("chat.message.created")))
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/lawyers", 200, 15*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LawyerSearch(true)
		m.ChatMessage(false)
		m.EventFailed("x")
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
	})
}
