package fetch

import "testing"

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "paragraph",
			input: "<p>Hello world</p>",
			want:  "Hello world",
		},
		{
			name:  "inline tags joined with spaces",
			input: "<p><strong>Bold</strong>and<em>italic</em></p>",
			want:  "Bold and italic",
		},
		{
			name:  "headings and list items in document order",
			input: "<h1>Title</h1><ul><li>One</li><li>Two</li></ul><h3>Sub</h3><p>Body</p>",
			want:  "Title One Two Sub Body",
		},
		{
			name:  "chrome removed",
			input: "<header><p>Menu</p></header><nav><li>Home</li></nav><p>Content</p><footer><p>Copyright</p></footer>",
			want:  "Content",
		},
		{
			name:  "script and style ignored",
			input: "<p>Kept</p><script>var x = 1;</script><style>p { color: red }</style>",
			want:  "Kept",
		},
		{
			name:  "forms, buttons and asides removed",
			input: "<aside><p>Ad</p></aside><form><p>Sign up</p><button>Go</button></form><p>Real text</p>",
			want:  "Real text",
		},
		{
			name:  "div text not collected",
			input: "<div>Loose text</div><p>Paragraph</p>",
			want:  "Paragraph",
		},
		{
			name:  "whitespace collapsed",
			input: "<p>  Line 1\n\n   Line\t2  </p>",
			want:  "Line 1 Line 2",
		},
		{
			name:  "nested content elements repeat text",
			input: "<ul><li><p>Inner</p></li></ul>",
			want:  "Inner Inner",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only chrome",
			input: "<nav><p>Links</p></nav>",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanString(tt.input)
			if err != nil {
				t.Fatalf("CleanString(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("CleanString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeSpace(t *testing.T) {
	if got := NormalizeSpace("  a \n\t b  "); got != "a b" {
		t.Errorf("NormalizeSpace = %q, want %q", got, "a b")
	}
	if got := NormalizeSpace(" \n "); got != "" {
		t.Errorf("NormalizeSpace of whitespace = %q, want empty", got)
	}
}
