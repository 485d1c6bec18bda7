package services

import "testing"

func TestWorseStatus(t *testing.T) {
	tests := []struct {
		current   string
		candidate string
		want      string
	}{
		{overallStatusOK, overallStatusOK, overallStatusOK},
		{overallStatusOK, overallStatusDegraded, overallStatusDegraded},
		{overallStatusDegraded, overallStatusOK, overallStatusDegraded},
		{overallStatusDegraded, overallStatusCritical, overallStatusCritical},
		{overallStatusCritical, overallStatusDegraded, overallStatusCritical},
	}

	for _, tt := range tests {
		if got := worseStatus(tt.current, tt.candidate); got != tt.want {
			t.Errorf("worseStatus(%q, %q) = %q, want %q", tt.current, tt.candidate, got, tt.want)
		}
	}
}

func TestHTTPStatusForOverall(t *testing.T) {
	s := NewHealthService("", "")
	if got := s.HTTPStatusForOverall(overallStatusCritical); got != 503 {
		t.Errorf("critical = %d, want 503", got)
	}
	if got := s.HTTPStatusForOverall(overallStatusOK); got != 200 {
		t.Errorf("ok = %d, want 200", got)
	}
	if got := s.HTTPStatusForOverall(overallStatusDegraded); got != 200 {
		t.Errorf("degraded = %d, want 200", got)
	}
}
