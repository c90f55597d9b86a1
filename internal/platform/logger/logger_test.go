package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"api_key", "sk-123",
		"session_id", "6f1c",
		"path", "/api/predict",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("len=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("api_key=%v", out[1])
	}
	h, _ := out[3].(string)
	if len(h) != len("hash:")+12 || h[:5] != "hash:" {
		t.Fatalf("session_id=%v", out[3])
	}
	if out[5] != "/api/predict" {
		t.Fatalf("path=%v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling=%v", out[6])
	}
}

func TestSanitizeNestedMap(t *testing.T) {
	got := sanitizeValue("headers", map[string]interface{}{"Authorization": "Bearer x", "Accept": "text/html"})
	m, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("type=%T", got)
	}
	if m["Authorization"] != "[REDACTED]" || m["Accept"] != "text/html" {
		t.Fatalf("m=%v", m)
	}
}
