package util

import "testing"

func TestRenderTemplate_FastPath(t *testing.T) {
	out, err := RenderTemplate("no markers here", map[string]any{"x": 1})
	if err != nil || out != "no markers here" {
		t.Fatalf("got (%q, %v)", out, err)
	}
}

func TestRenderTemplate_SubstitutesFields(t *testing.T) {
	out, err := RenderTemplate("Issue {{.ID}}: {{upper .Title}}", map[string]any{"ID": "CYR-7", "Title": "fix it"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Issue CYR-7: FIX IT" {
		t.Errorf("out = %q", out)
	}
}

func TestRenderTemplate_BadTemplateFails(t *testing.T) {
	if _, err := RenderTemplate("{{.Unclosed", nil); err == nil {
		t.Error("malformed template should error")
	}
}
