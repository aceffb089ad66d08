package msgcat

import (
	"strings"
	"testing"
)

func TestRenderEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	out, err := c.Render("result.win", map[string]string{
		"Username": "alice",
		"Loser":    "black",
		"Winner":   "white",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "alice") || !strings.Contains(out, "white") {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestRenderMissingKey(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestRenderMissingData(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	if _, err := c.Render("reject.not_found", map[string]string{}); err == nil {
		t.Fatalf("missingkey=error must reject incomplete data")
	}
}
