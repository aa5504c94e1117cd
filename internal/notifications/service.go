package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reabatch/internal/config"
)

const userAgent = "reabatch/0.1.0"

// RunNotice summarises a finished run for an alert.
type RunNotice struct {
	RootDir   string
	Files     int
	Groups    int
	Unmatched int
	ExitCode  int
	Duration  time.Duration
}

// Service defines the notification surface used by the batch runner.
type Service interface {
	NotifyRunCompleted(ctx context.Context, notice RunNotice) error
	NotifyRunFailed(ctx context.Context, notice RunNotice, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc delivers anything.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, notice RunNotice) error {
	message := fmt.Sprintf("Rendered %d files in %d groups in %s", notice.Files-notice.Unmatched, notice.Groups, formatDuration(notice.Duration))
	if notice.Unmatched > 0 {
		message += fmt.Sprintf("\n%d unmatched files moved aside", notice.Unmatched)
	}
	if root := strings.TrimSpace(notice.RootDir); root != "" {
		message += "\nRoot: " + root
	}
	return n.send(ctx, payload{
		title:   "reabatch - Render Complete",
		message: message,
		tags:    []string{"reabatch", "render", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, notice RunNotice, err error) error {
	var builder strings.Builder
	builder.WriteString("Render failed")
	if notice.ExitCode != 0 {
		fmt.Fprintf(&builder, " (exit code %d)", notice.ExitCode)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	if root := strings.TrimSpace(notice.RootDir); root != "" {
		builder.WriteString("\nRoot: ")
		builder.WriteString(root)
	}
	return n.send(ctx, payload{
		title:    "reabatch - Render Failed",
		message:  builder.String(),
		tags:     []string{"reabatch", "render", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "reabatch - Test",
		message:  "Notification system test",
		tags:     []string{"reabatch", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunNotice) error     { return nil }
func (noopService) NotifyRunFailed(context.Context, RunNotice, error) error { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
