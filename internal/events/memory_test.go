package events

import (
	"context"
	"testing"

	"github.com/gridcast/gridcast/internal/config"
)

func TestMemoryPublisher(t *testing.T) {
	pub := NewMemoryPublisher()

	if err := pub.Publish(context.Background(), SubjectRuns, []byte("one")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := pub.Publish(context.Background(), SubjectRuns, []byte("two")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	msgs := pub.Messages(SubjectRuns)
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if string(msgs[0]) != "one" || string(msgs[1]) != "two" {
		t.Errorf("Messages out of order: %q, %q", msgs[0], msgs[1])
	}

	if len(pub.Messages("other")) != 0 {
		t.Error("Expected no messages on unused subject")
	}
}

func TestNewPublisher(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.EventsConfig
		wantType string
		wantErr  bool
	}{
		{
			name:     "none",
			cfg:      config.EventsConfig{Type: "none"},
			wantType: "events.NoopPublisher",
		},
		{
			name:     "empty defaults to none",
			cfg:      config.EventsConfig{},
			wantType: "events.NoopPublisher",
		},
		{
			name:     "memory",
			cfg:      config.EventsConfig{Type: "memory"},
			wantType: "*events.MemoryPublisher",
		},
		{
			name:    "kafka without brokers",
			cfg:     config.EventsConfig{Type: "kafka"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			cfg:     config.EventsConfig{Type: "rabbitmq"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub, err := NewPublisher(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPublisher failed: %v", err)
			}

			gotType := typeName(pub)
			if gotType != tt.wantType {
				t.Errorf("Expected publisher type %s, got %s", tt.wantType, gotType)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case NoopPublisher:
		return "events.NoopPublisher"
	case *MemoryPublisher:
		return "*events.MemoryPublisher"
	default:
		return "unknown"
	}
}
