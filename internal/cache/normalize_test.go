package cache

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		runs []string
		want string
	}{
		{"joins runs", []string{"Hello", "world."}, "Hello world."},
		{"collapses whitespace", []string{"  a \t b\n\nc  "}, "a b c"},
		{"empty", nil, ""},
		{"whitespace only", []string{" ", "\n"}, ""},
		{"hyphenated line break", []string{"infor-", "mation is key."}, "information is key."},
		{"hyphen at end of line", []string{"infor-\nmation is key."}, "information is key."},
		{"suspended hyphens", []string{"Both pre- and post-war, first- and second-hand copies."}, "Both pre- and post-war, first- and second-hand copies."},
		{"keeps real hyphen", []string{"well-known fact"}, "well-known fact"},
		{"keeps capitalised continuation", []string{"North-", "East"}, "North- East"},
		{"soft hyphen", []string{"co\u00adoperate"}, "cooperate"},
		{"composes NFC", []string{"Cafe\u0301"}, "Caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.runs); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.runs, got, tt.want)
			}
		})
	}
}
