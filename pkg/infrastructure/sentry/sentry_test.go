package sentry

import (
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestInit_NoDSN(t *testing.T) {
	if err := Init(Config{}, nil); err != nil {
		t.Fatalf("expected nil error without DSN, got %v", err)
	}
	// Captures without a client must not panic.
	CaptureException(errors.New("boom"), map[string]string{"request_id": "r1"}, nil)
	CaptureWarning(errors.New("degraded"), nil, nil)
	CaptureException(nil, nil, nil)
}

func TestScrub(t *testing.T) {
	event := &sentry.Event{Request: &sentry.Request{
		Headers: map[string]string{"Authorization": "Bearer x", "Cookie": "c", "Accept": "application/json"},
		Data:    `{"activities":[]}`,
	}}

	got := scrub(event, nil)
	if _, ok := got.Request.Headers["Authorization"]; ok {
		t.Error("expected Authorization header to be removed")
	}
	if _, ok := got.Request.Headers["Cookie"]; ok {
		t.Error("expected Cookie header to be removed")
	}
	if got.Request.Headers["Accept"] != "application/json" {
		t.Error("expected unrelated headers to survive")
	}
	if got.Request.Data != "" {
		t.Errorf("expected request body to be dropped, got %q", got.Request.Data)
	}
}

func TestRecoverAndCapture_RePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic to propagate")
		}
	}()
	func() {
		defer RecoverAndCapture(nil)
		panic("render exploded")
	}()
}
