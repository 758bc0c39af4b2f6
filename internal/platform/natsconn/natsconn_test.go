package natsconn

import (
	"testing"
	"time"
)

func TestEnvInt_Default(t *testing.T) {
	v := envInt("NATSCONN_TEST_NONEXISTENT", 42)
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
}

func TestEnvInt_Set(t *testing.T) {
	t.Setenv("NATSCONN_TEST_INT", "7")
	v := envInt("NATSCONN_TEST_INT", 42)
	if v != 7 {
		t.Fatalf("expected 7, got %d", v)
	}
}

func TestEnvDuration_Default(t *testing.T) {
	v := envDuration("NATSCONN_TEST_NONEXISTENT", 5*time.Second)
	if v != 5*time.Second {
		t.Fatalf("expected 5s, got %s", v)
	}
}

func TestEnvDuration_Set(t *testing.T) {
	t.Setenv("NATSCONN_TEST_DUR", "3s")
	v := envDuration("NATSCONN_TEST_DUR", 5*time.Second)
	if v != 3*time.Second {
		t.Fatalf("expected 3s, got %s", v)
	}
}

func TestWithDefaults_ClientName(t *testing.T) {
	t.Setenv("NATS_CLIENT_NAME", "")
	o := Options{URL: "nats://x:4222"}.withDefaults()
	if o.Name != "forum-platform" {
		t.Fatalf("expected default client name, got %q", o.Name)
	}

	t.Setenv("NATS_CLIENT_NAME", "forum-worker")
	o = Options{URL: "nats://x:4222"}.withDefaults()
	if o.Name != "forum-worker" {
		t.Fatalf("expected env client name, got %q", o.Name)
	}
}

func TestWithDefaults_KeepsExplicitValues(t *testing.T) {
	o := Options{URL: "nats://y:4222", Name: "custom", MaxReconnects: 9, ReconnectWait: time.Second}.withDefaults()
	if o.URL != "nats://y:4222" || o.Name != "custom" || o.MaxReconnects != 9 || o.ReconnectWait != time.Second {
		t.Fatalf("explicit options must not be overridden: %+v", o)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(Options{
		URL:           "nats://127.0.0.1:19999",
		MaxReconnects: 0,
		ReconnectWait: 10 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error connecting to invalid NATS URL")
	}
}
