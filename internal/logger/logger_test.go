package logger

import "testing"

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short string untouched", "hello", 10, "hello"},
		{"exact limit untouched", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 5, "hello..."},
		{"zero limit", "hello", 0, ""},
		{"negative limit", "hello", -1, ""},
		{"trims whitespace", "  hello  ", 10, "hello"},
		{"multibyte runes", "привет мир", 6, "привет..."},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := TruncateForLog(c.in, c.limit); got != c.want {
				t.Fatalf("TruncateForLog(%q, %d) = %q, want %q", c.in, c.limit, got, c.want)
			}
		})
	}
}
