package api

import (
	"reflect"
	"testing"
)

func TestDescriptorAccessors(t *testing.T) {
	d := Descriptor{
		Name: "github",
		Config: map[string]any{
			"owner":      "systemstart",
			"draft":      "true",
			"port":       "8443",
			"blank":      "   ",
			"assets":     []any{"a.tar.gz", "b.zip"},
			"single":     "only.zip",
			"prerelease": false,
		},
	}

	if got := d.String("owner"); got != "systemstart" {
		t.Errorf("String(owner) = %q", got)
	}
	if got := d.String("missing"); got != "" {
		t.Errorf("String(missing) = %q", got)
	}
	if got := d.StringOr("blank", "fallback"); got != "fallback" {
		t.Errorf("StringOr(blank) = %q", got)
	}
	if !d.Bool("draft") {
		t.Error("Bool(draft) = false")
	}
	if d.Bool("prerelease") {
		t.Error("Bool(prerelease) = true")
	}
	if got := d.Int("port", 0); got != 8443 {
		t.Errorf("Int(port) = %d", got)
	}
	if got := d.Int("missing", 7); got != 7 {
		t.Errorf("Int(missing) = %d", got)
	}
	if got := d.StringSlice("assets"); !reflect.DeepEqual(got, []string{"a.tar.gz", "b.zip"}) {
		t.Errorf("StringSlice(assets) = %v", got)
	}
	if got := d.StringSlice("single"); !reflect.DeepEqual(got, []string{"only.zip"}) {
		t.Errorf("StringSlice(single) = %v", got)
	}
	if got := d.StringSlice("missing"); got != nil {
		t.Errorf("StringSlice(missing) = %v", got)
	}
}

func TestDescriptorMissing(t *testing.T) {
	d := Descriptor{Config: map[string]any{
		"token": "abc",
		"blank": "",
		"list":  []any{"x"},
	}}

	got := d.Missing("token", "blank", "list", "absent")
	want := []string{"blank", "absent"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Missing() = %v, want %v", got, want)
	}

	var empty Descriptor
	if got := empty.Missing("token"); !reflect.DeepEqual(got, []string{"token"}) {
		t.Errorf("Missing() on nil config = %v", got)
	}
}
