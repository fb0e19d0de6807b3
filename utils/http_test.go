package utils

import (
	"testing"
	"time"
)

func TestNewHTTPClientTimeout(t *testing.T) {
	c := NewHTTPClient(3 * time.Second)
	if c.Timeout != 3*time.Second {
		t.Fatalf("timeout = %v", c.Timeout)
	}
	if c.Transport == nil {
		t.Fatal("expected a dedicated transport")
	}
}

func TestUploadJSONToR2WithoutInit(t *testing.T) {
	if R2Ready() {
		t.Skip("R2 initialised elsewhere")
	}
	if _, err := UploadJSONToR2(t.Context(), "k.json", map[string]int{"a": 1}); err == nil {
		t.Fatal("expected error without client")
	}
}
