package notification

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBuildSlackFieldsSorted(t *testing.T) {
	data := map[string]any{
		"Resources":       12,
		"Monthly Savings": "$42.00",
		"Failed Scopes":   0,
		"Recommendations": 3,
	}

	want := []string{"Failed Scopes", "Monthly Savings", "Recommendations", "Resources"}
	for i := 0; i < 5; i++ {
		fields := buildSlackFields(data)
		if len(fields) != len(want) {
			t.Fatalf("got %d fields, want %d", len(fields), len(want))
		}
		for j, title := range want {
			if fields[j]["title"] != title {
				t.Fatalf("fields[%d] = %q, want %q", j, fields[j]["title"], title)
			}
		}
	}
}

func TestSendWebhookSetsEventHeader(t *testing.T) {
	var gotEvent string
	var gotMsg Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvent = r.Header.Get("X-CostPilot-Event")
		if err := json.NewDecoder(r.Body).Decode(&gotMsg); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(Config{WebhookURLs: []string{srv.URL}}, logger)

	err := svc.Send(context.Background(), Message{
		EventType: EventAnalysisCompleted,
		Title:     "Cost Optimization Report",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotEvent != string(EventAnalysisCompleted) {
		t.Errorf("event header = %q, want %q", gotEvent, EventAnalysisCompleted)
	}
	if gotMsg.Title != "Cost Optimization Report" {
		t.Errorf("title = %q", gotMsg.Title)
	}
}
