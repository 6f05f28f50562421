package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthcmd/internal/backend"
	"healthcmd/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.NewClient(srv.URL, "SOL-7842-ALPHA", 2*time.Second, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestAvailable_OperationalOnly(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/health", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"status": "operational"})
	}))
	require.True(t, client.Available(context.Background()))

	degraded := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "degraded"})
	}))
	require.False(t, degraded.Available(context.Background()))

	unreachable := backend.NewClient("http://127.0.0.1:1", "S1", 200*time.Millisecond, zap.NewNop())
	require.False(t, unreachable.Available(context.Background()))
}

func TestLatest_ParsesPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/vitals/latest/SOL-7842-ALPHA", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"heart_rate": 105,
				"ml_analysis": map[string]any{
					"overall_risk_level": "LOW",
				},
			},
		})
	}))

	payload, err := client.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, payload.HeartRate)
	require.Equal(t, 105.0, *payload.HeartRate)
	// 缺失字段保持 nil（回退到当前值的语义由引擎执行）
	require.Nil(t, payload.SpO2)
	require.NotNil(t, payload.MLAnalysis)
	require.Equal(t, "LOW", *payload.MLAnalysis.OverallRiskLevel)
}

func TestLatest_NotFoundIsError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "No data found for this soldier",
		})
	}))

	_, err := client.Latest(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "No data found")
}

func TestPushVitals_SendsReadingBody(t *testing.T) {
	var got models.VitalsReading
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/vitals", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"heart_rate": got.HeartRate,
				"ml_analysis": map[string]any{
					"health_score": 91.5,
				},
			},
		})
	}))

	reading := models.ReadingFromRecord("SOL-7842-ALPHA", models.DefaultVitals(), "2026-02-04T10:30:00Z")
	payload, err := client.PushVitals(context.Background(), reading)
	require.NoError(t, err)

	require.Equal(t, "SOL-7842-ALPHA", got.SoldierID)
	require.Equal(t, 72.0, got.HeartRate)
	require.Equal(t, "2026-02-04T10:30:00Z", got.Timestamp)
	require.NotNil(t, payload.MLAnalysis)
	require.Equal(t, 91.5, *payload.MLAnalysis.HealthScore)
}

func TestPushVitals_TransportErrorReturnsError(t *testing.T) {
	client := backend.NewClient("http://127.0.0.1:1", "S1", 200*time.Millisecond, zap.NewNop())
	_, err := client.PushVitals(context.Background(), models.VitalsReading{})
	require.Error(t, err)
}

func TestHistory_QueryParams(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/vitals/history/SOL-7842-ALPHA", r.URL.Path)
		require.Equal(t, "10", r.URL.Query().Get("limit"))
		require.Equal(t, "6", r.URL.Query().Get("hours"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"count":   2,
			"data": []map[string]any{
				{"heart_rate": 70},
				{"heart_rate": 75},
			},
		})
	}))

	history, err := client.History(context.Background(), 10, 6)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 75.0, *history[1].HeartRate)
}

func TestPredictRisk(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/predict/risk", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"prediction": map[string]any{"risk_level": "MODERATE"},
		})
	}))

	prediction, err := client.PredictRisk(context.Background(), models.VitalsReading{HeartRate: 110})
	require.NoError(t, err)
	require.Contains(t, string(prediction), "MODERATE")
}

func TestAlerts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/alerts/SOL-7842-ALPHA", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"count":   1,
			"alerts":  []map[string]any{{"type": "HIGH_HR"}},
		})
	}))

	alerts, err := client.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
}

func TestSimulate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/simulate", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"heart_rate": 82},
		})
	}))

	payload, err := client.Simulate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 82.0, *payload.HeartRate)
}
