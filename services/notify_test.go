package services

import (
	"testing"

	"campus-facilities-api/config"
)

func TestNewNotifierNoURLs(t *testing.T) {
	notifier, err := NewNotifier(config.NotifyConfig{URLs: "", TimeoutSeconds: 10})
	if err != nil {
		t.Fatalf("NewNotifier failed: %v", err)
	}

	if _, ok := notifier.(*NoopNotifier); !ok {
		t.Fatalf("expected NoopNotifier, got %T", notifier)
	}
	if err := notifier.Send("title", "message"); err != nil {
		t.Errorf("noop Send returned error: %v", err)
	}
}

func TestNewNotifierIgnoresBlankEntries(t *testing.T) {
	notifier, err := NewNotifier(config.NotifyConfig{URLs: " , ,", TimeoutSeconds: 10})
	if err != nil {
		t.Fatalf("NewNotifier failed: %v", err)
	}
	if _, ok := notifier.(*NoopNotifier); !ok {
		t.Fatalf("expected NoopNotifier for blank URL list, got %T", notifier)
	}
}

func TestNewNotifierInvalidURL(t *testing.T) {
	_, err := NewNotifier(config.NotifyConfig{URLs: "not a url", TimeoutSeconds: 10})
	if err == nil {
		t.Error("expected error for malformed notification URL")
	}
}

func TestNewNotifierGenericWebhook(t *testing.T) {
	notifier, err := NewNotifier(config.NotifyConfig{
		URLs:           "generic://alerts.example.com/hook",
		TimeoutSeconds: 5,
	})
	if err != nil {
		t.Fatalf("NewNotifier failed: %v", err)
	}
	if _, ok := notifier.(*ShoutrrrNotifier); !ok {
		t.Fatalf("expected ShoutrrrNotifier, got %T", notifier)
	}
}
