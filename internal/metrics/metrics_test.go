package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}

	if m.registry == nil {
		t.Error("Registry is nil")
	}

	// Verify session metrics
	if m.SessionsStartedTotal == nil {
		t.Error("SessionsStartedTotal is nil")
	}
	if m.SessionsCompletedTotal == nil {
		t.Error("SessionsCompletedTotal is nil")
	}
	if m.SessionsAbortedTotal == nil {
		t.Error("SessionsAbortedTotal is nil")
	}
	if m.SessionsActive == nil {
		t.Error("SessionsActive is nil")
	}

	// Verify edge metrics
	if m.EdgesTotal == nil {
		t.Error("EdgesTotal is nil")
	}

	// Verify failure metrics
	if m.SessionInitErrorsTotal == nil {
		t.Error("SessionInitErrorsTotal is nil")
	}
	if m.WriteErrorsTotal == nil {
		t.Error("WriteErrorsTotal is nil")
	}
	if m.ProtocolViolationsTotal == nil {
		t.Error("ProtocolViolationsTotal is nil")
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()

	// Record some sample metrics so they appear in output
	m.SessionsStartedTotal.Inc()
	m.SessionsCompletedTotal.Inc()
	m.SessionsActive.Set(1)
	m.EdgesTotal.WithLabelValues("call").Inc()
	m.EdgesTotal.WithLabelValues("return").Inc()
	m.ProtocolViolationsTotal.Inc()

	handler := m.Handler()
	if handler == nil {
		t.Fatal("Handler returned nil")
	}

	// Test HTTP endpoint
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()

	// Verify metrics are exposed
	expectedMetrics := []string{
		"capture_sessions_started_total",
		"capture_sessions_completed_total",
		"capture_sessions_aborted_total",
		"capture_sessions_active",
		"capture_edges_total",
		"capture_session_init_errors_total",
		"capture_write_errors_total",
		"capture_protocol_violations_total",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(body, metric) {
			t.Errorf("Metrics output missing: %s", metric)
		}
	}
}

func TestMetricsRegistry(t *testing.T) {
	m := NewMetrics()

	registry := m.Registry()
	if registry == nil {
		t.Fatal("Registry returned nil")
	}

	// Record some sample metrics so they appear in gather
	m.SessionsStartedTotal.Inc()
	m.SessionsActive.Set(1)
	m.EdgesTotal.WithLabelValues("call").Inc()

	// Verify metrics are registered
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Error("No metrics registered")
	}
}

func TestSessionMetrics(t *testing.T) {
	m := NewMetrics()

	t.Run("set active sessions", func(t *testing.T) {
		m.SessionsActive.Set(3)

		metricFamilies, _ := m.registry.Gather()
		found := false
		for _, mf := range metricFamilies {
			if *mf.Name == "capture_sessions_active" {
				found = true
				if len(mf.Metric) > 0 && *mf.Metric[0].Gauge.Value != 3 {
					t.Errorf("Expected value 3, got %f", *mf.Metric[0].Gauge.Value)
				}
			}
		}
		if !found {
			t.Error("capture_sessions_active metric not found")
		}
	})

	t.Run("increment started sessions", func(t *testing.T) {
		m.SessionsStartedTotal.Inc()

		metricFamilies, _ := m.registry.Gather()
		found := false
		for _, mf := range metricFamilies {
			if *mf.Name == "capture_sessions_started_total" {
				found = true
			}
		}
		if !found {
			t.Error("capture_sessions_started_total metric not found")
		}
	})

	t.Run("count edges by kind", func(t *testing.T) {
		m.EdgesTotal.WithLabelValues("call").Inc()
		m.EdgesTotal.WithLabelValues("call").Inc()
		m.EdgesTotal.WithLabelValues("return").Inc()

		metricFamilies, _ := m.registry.Gather()
		found := false
		for _, mf := range metricFamilies {
			if *mf.Name == "capture_edges_total" {
				found = true
				if len(mf.Metric) != 2 {
					t.Errorf("Expected 2 label values, got %d", len(mf.Metric))
				}
			}
		}
		if !found {
			t.Error("capture_edges_total metric not found")
		}
	})
}

func TestMetricsIsolation(t *testing.T) {
	// Create two separate metrics instances
	m1 := NewMetrics()
	m2 := NewMetrics()

	// Increment metrics in m1
	m1.SessionsStartedTotal.Inc()
	m1.SessionsStartedTotal.Inc()

	// Increment metrics in m2
	m2.SessionsStartedTotal.Inc()

	// Verify m1 has 2
	metricFamilies1, _ := m1.registry.Gather()
	for _, mf := range metricFamilies1 {
		if *mf.Name == "capture_sessions_started_total" {
			if len(mf.Metric) > 0 && *mf.Metric[0].Counter.Value != 2 {
				t.Errorf("m1: Expected value 2, got %f", *mf.Metric[0].Counter.Value)
			}
		}
	}

	// Verify m2 has 1
	metricFamilies2, _ := m2.registry.Gather()
	for _, mf := range metricFamilies2 {
		if *mf.Name == "capture_sessions_started_total" {
			if len(mf.Metric) > 0 && *mf.Metric[0].Counter.Value != 1 {
				t.Errorf("m2: Expected value 1, got %f", *mf.Metric[0].Counter.Value)
			}
		}
	}
}
