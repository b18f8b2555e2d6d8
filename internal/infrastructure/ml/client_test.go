package ml

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsSentiment/internal/domain"
)

func TestClassifyParsesPrediction(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sentiment" || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected request %s auth=%q", r.URL.Path, r.Header.Get("Authorization"))
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["text"] != "profits soared" {
			t.Errorf("unexpected body %v (%v)", body, err)
		}
		_, _ = w.Write([]byte(`{"label":"POSITIVE","score":0.93}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "secret", 100, 1).WithHTTPClient(srv.Client())
	pred, err := client.Classify(context.Background(), "profits soared")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if pred.Label != domain.LabelPositive || pred.Confidence != 0.93 {
		t.Fatalf("unexpected prediction %+v", pred)
	}
}

func TestClassifyErrorKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "server error", status: http.StatusBadGateway, want: domain.ErrClassifierUnavailable},
		{name: "throttled", status: http.StatusTooManyRequests, want: domain.ErrClassifierUnavailable},
		{name: "unknown label", status: http.StatusOK, body: `{"label":"mixed","score":0.4}`, want: domain.ErrInvalidPrediction},
		{name: "garbage", status: http.StatusOK, body: `not json`, want: domain.ErrInvalidPrediction},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", 0, 0).WithHTTPClient(srv.Client()).Classify(context.Background(), "x")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClassifyUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", 0, 0).Classify(context.Background(), "x")
	if !errors.Is(err, domain.ErrClassifierUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
