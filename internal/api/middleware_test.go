package api

import (
	"log/slog"
	"net/http"
	"testing"
)

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/api/v1/pointer", http.StatusOK, slog.LevelDebug},
		{"/health", http.StatusOK, slog.LevelDebug},
		{"/api/v1/state", http.StatusOK, slog.LevelInfo},
		{"/api/v1/pointer", http.StatusInternalServerError, slog.LevelWarn},
		{"/api/v1/charts/x/load", http.StatusBadGateway, slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := requestLevel(tt.path, tt.status); got != tt.want {
			t.Fatalf("requestLevel(%q, %d) = %v; want %v", tt.path, tt.status, got, tt.want)
		}
	}
}
