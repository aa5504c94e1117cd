package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reabatch/internal/config"
	"reabatch/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, <-chan captured) {
	t.Helper()
	ch := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ch <- captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func serviceFor(url string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if notifications.Enabled(svc) {
		t.Fatal("expected noop service without a topic")
	}
	if err := svc.NotifyRunFailed(context.Background(), notifications.RunNotice{}, errors.New("boom")); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  []string
		expectTags     string
		expectPriority string
	}{
		{
			name: "completed",
			send: func(s notifications.Service) error {
				return s.NotifyRunCompleted(context.Background(), notifications.RunNotice{
					RootDir: "/audio", Files: 5, Groups: 2, Unmatched: 1, Duration: 90 * time.Second,
				})
			},
			expectTitle:   "reabatch - Render Complete",
			expectMessage: []string{"Rendered 4 files in 2 groups in 1m30s", "1 unmatched", "Root: /audio"},
			expectTags:    "reabatch,render,completed",
		},
		{
			name: "failed",
			send: func(s notifications.Service) error {
				return s.NotifyRunFailed(context.Background(), notifications.RunNotice{ExitCode: 3}, errors.New("subprocess failure"))
			},
			expectTitle:    "reabatch - Render Failed",
			expectMessage:  []string{"Render failed (exit code 3): subprocess failure"},
			expectTags:     "reabatch,render,error",
			expectPriority: "high",
		},
		{
			name:           "test",
			send:           func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			expectTitle:    "reabatch - Test",
			expectMessage:  []string{"Notification system test"},
			expectTags:     "reabatch,test",
			expectPriority: "low",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, ch := newCaptureServer(t, http.StatusOK)
			if err := tt.send(serviceFor(srv.URL)); err != nil {
				t.Fatalf("send: %v", err)
			}
			got := <-ch
			if got.title != tt.expectTitle {
				t.Fatalf("title = %q, want %q", got.title, tt.expectTitle)
			}
			for _, want := range tt.expectMessage {
				if !strings.Contains(got.body, want) {
					t.Fatalf("body %q missing %q", got.body, want)
				}
			}
			if got.tags != tt.expectTags {
				t.Fatalf("tags = %q, want %q", got.tags, tt.expectTags)
			}
			if got.priority != tt.expectPriority {
				t.Fatalf("priority = %q, want %q", got.priority, tt.expectPriority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusForbidden)
	err := serviceFor(srv.URL).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
