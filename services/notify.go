package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"campus-facilities-api/config"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// Notifier delivers alert messages to the configured destinations. Send
// failures are the caller's to log; they must never abort reading ingestion
// or alert-state updates.
type Notifier interface {
	Send(title, message string) error
}

// ShoutrrrNotifier fans one message out to every configured shoutrrr URL
// (twilio for SMS, smtp/sendgrid for email, and so on).
type ShoutrrrNotifier struct {
	sender  *router.ServiceRouter
	timeout time.Duration
}

// NewNotifier builds a notifier from configuration. With no URLs configured
// it returns a no-op implementation so alerting stays wired but silent.
func NewNotifier(cfg config.NotifyConfig) (Notifier, error) {
	var urls []string
	for _, u := range strings.Split(cfg.URLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		log.Printf("no notification URLs configured, alerts will be logged only")
		return &NoopNotifier{}, nil
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("create notification sender: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sender.Timeout = timeout

	log.Printf("notification sender initialized with %d destination(s)", len(urls))
	return &ShoutrrrNotifier{sender: sender, timeout: timeout}, nil
}

func (n *ShoutrrrNotifier) Send(title, message string) error {
	params := &types.Params{"title": title}

	var errs []error
	for _, err := range n.sender.Send(message, params) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopNotifier drops messages, logging them so a misconfigured deployment
// still leaves a trace of what would have been sent.
type NoopNotifier struct{}

func (n *NoopNotifier) Send(title, message string) error {
	log.Printf("notification skipped (no destinations): %s: %s", title, message)
	return nil
}
