package timesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWorldTimeClientNow(t *testing.T) {
	want := time.Date(2024, time.March, 1, 12, 30, 45, 123000000, time.UTC)

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"datetime":"2024-03-01T12:30:45.123+00:00","timezone":"Europe/Zurich"}`))
	}))
	defer srv.Close()

	client := NewWorldTimeClient(WithBaseURL(srv.URL))

	got, err := client.Now(context.Background(), "Europe/Zurich")
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("Now = %v, want %v", got, want)
	}
	if gotPath != "/Europe/Zurich" {
		t.Errorf("request path = %q, want /Europe/Zurich", gotPath)
	}
}

func TestWorldTimeClientDefaultsTimezone(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"datetime":"2024-03-01T12:00:00+00:00"}`))
	}))
	defer srv.Close()

	client := NewWorldTimeClient(WithBaseURL(srv.URL))
	if _, err := client.Now(context.Background(), ""); err != nil {
		t.Fatalf("Now: %v", err)
	}
	if gotPath != "/UTC" {
		t.Errorf("request path = %q, want /UTC", gotPath)
	}
}

func TestWorldTimeClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "ServerError",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "MalformedJSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"datetime": not json`))
			},
		},
		{
			name: "UnparseableDatetime",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"datetime":"yesterday"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewWorldTimeClient(WithBaseURL(srv.URL))
			if _, err := client.Now(context.Background(), "UTC"); err == nil {
				t.Fatal("Now: expected error, got nil")
			}
		})
	}
}

func TestWorldTimeClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"datetime":"2024-03-01T12:00:00+00:00"}`))
	}))
	defer srv.Close()

	client := NewWorldTimeClient(
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
	)
	if _, err := client.Now(context.Background(), "UTC"); err == nil {
		t.Fatal("Now: expected timeout error, got nil")
	}
}
