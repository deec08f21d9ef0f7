package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("SEAM_SET", "hello")
	t.Setenv("SEAM_EMPTY", "")
	t.Setenv("SEAM_A", "alice")
	t.Setenv("SEAM_B", "bob")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set var", "dir: ${SEAM_SET}", "dir: hello"},
		{"unset var expands empty", "dir: ${SEAM_UNSET_XYZ}", "dir: "},
		{"default used when unset", "dir: ${SEAM_UNSET_XYZ:-fallback}", "dir: fallback"},
		{"default ignored when set", "dir: ${SEAM_SET:-fallback}", "dir: hello"},
		{"default used when empty", "dir: ${SEAM_EMPTY:-fallback}", "dir: fallback"},
		{"multiple vars", "${SEAM_A}:${SEAM_B}", "alice:bob"},
		{"no vars untouched", "no variables here", "no variables here"},
		{"dollar without braces untouched", "cost: $5", "cost: $5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandEnvInsideYAML(t *testing.T) {
	t.Setenv("HOOK_TOKEN", "secret-token")
	t.Setenv("HOOK_URL", "https://hooks.example.com/seam")

	input := `notify:
  type: webhook
  url: ${HOOK_URL}
  headers:
    Authorization: Bearer ${HOOK_TOKEN}`

	want := `notify:
  type: webhook
  url: https://hooks.example.com/seam
  headers:
    Authorization: Bearer secret-token`

	if got := ExpandEnv(input); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
