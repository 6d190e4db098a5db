package valkey

import "testing"

func TestKeyFamily(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"properties:all", "properties:all"},
		{"properties:search:1f2e3d4c", "properties:search"},
		{"universities:all", "universities:all"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := keyFamily(tt.key); got != tt.want {
			t.Errorf("keyFamily(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
