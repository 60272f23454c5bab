package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name  string
		value *qdrant.Value
		want  any
	}{
		{
			name:  "string value",
			value: &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: "note-1"}},
			want:  "note-1",
		},
		{
			name:  "bool value",
			value: &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: true}},
			want:  true,
		},
		{
			name:  "integer value",
			value: &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: 42}},
			want:  int64(42),
		},
		{
			name:  "double value",
			value: &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: 0.5}},
			want:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertValue(tt.value)
			if got != tt.want {
				t.Errorf("convertValue() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"user_id": {Kind: &qdrant.Value_StringValue{StringValue: "user-1"}},
		"title":   {Kind: &qdrant.Value_StringValue{StringValue: "🔒 Secret Note"}},
		"nil":     nil,
	}

	got := convertPayloadToMap(payload)

	if len(got) != 2 {
		t.Errorf("convertPayloadToMap() returned %d entries, want 2", len(got))
	}
	if got["user_id"] != "user-1" {
		t.Errorf("convertPayloadToMap() user_id = %v, want user-1", got["user_id"])
	}
	if _, ok := got["nil"]; ok {
		t.Error("convertPayloadToMap() kept nil value entry")
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	if _, err := NewQdrantStore("://invalid"); err == nil {
		t.Error("NewQdrantStore() expected error for invalid URL")
	}
}
