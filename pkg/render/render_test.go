package render

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got, err := String("msg", "{{ .name }} {{ .version }} released", map[string]any{
		"name":    "shipyard",
		"version": "1.2.0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "shipyard 1.2.0 released" {
		t.Errorf("got %q", got)
	}
}

func TestString_SprigFunctions(t *testing.T) {
	got, err := String("msg", `{{ "hello" | upper }}-{{ list 1 2 | len }}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "HELLO-2" {
		t.Errorf("got %q", got)
	}
}

func TestString_EnvFunction(t *testing.T) {
	t.Setenv("SHIPYARD_RENDER_TOKEN", "s3cret")

	got, err := String("token", `{{ env "SHIPYARD_RENDER_TOKEN" }}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("got %q", got)
	}
}

func TestString_ParseError(t *testing.T) {
	_, err := String("bad", "{{ .unclosed", nil)
	if err == nil {
		t.Fatal("expected error for invalid template syntax")
	}
	if !strings.Contains(err.Error(), "parsing template") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestString_ExecutionError(t *testing.T) {
	_, err := String("bad", `{{ fail "boom" }}`, nil)
	if err == nil {
		t.Fatal("expected error for template execution failure")
	}
	if !strings.Contains(err.Error(), "executing template") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIsTemplate(t *testing.T) {
	if !IsTemplate("{{ .x }}") {
		t.Error("expected template")
	}
	if IsTemplate("plain text") {
		t.Error("expected plain text")
	}
}
