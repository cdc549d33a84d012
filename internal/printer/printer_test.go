package printer

import (
	"bytes"
	"strings"
	"testing"
)

// TestRenderFunctions verifies that all render functions return non-empty styled strings.
func TestRenderFunctions(t *testing.T) {
	tests := []struct {
		name     string
		function func(string) string
		input    string
	}{
		{"Faint", Faint, "test text"},
		{"Bold", Bold, "test text"},
		{"Success", Success, "test text"},
		{"Error", Error, "test text"},
		{"Warning", Warning, "test text"},
		{"Info", Info, "test text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.function(tt.input)
			if !strings.Contains(result, tt.input) {
				t.Errorf("%s() result does not contain input text. got %q, want to contain %q", tt.name, result, tt.input)
			}
		})
	}
}

// TestPrintFunctions verifies that print functions reach the right stream.
func TestPrintFunctions(t *testing.T) {
	tests := []struct {
		name     string
		function func(string)
		toStderr bool
	}{
		{"Println", Println, false},
		{"PrintFaint", PrintFaint, false},
		{"PrintBold", PrintBold, false},
		{"PrintSuccess", PrintSuccess, false},
		{"PrintInfo", PrintInfo, false},
		{"PrintError", PrintError, true},
		{"PrintWarning", PrintWarning, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			restore := SetOutput(&out, &errOut)
			defer restore()

			tt.function("test text")

			got, other := out.String(), errOut.String()
			if tt.toStderr {
				got, other = other, got
			}
			if !strings.Contains(got, "test text") {
				t.Errorf("%s() output = %q", tt.name, got)
			}
			if !strings.HasSuffix(got, "\n") {
				t.Errorf("%s() output does not end with newline", tt.name)
			}
			if other != "" {
				t.Errorf("%s() wrote to the wrong stream: %q", tt.name, other)
			}
		})
	}
}

func TestSetNoColor(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	if got := Error("plain"); got != "plain" {
		t.Errorf("expected no escape sequences, got %q", got)
	}
}

func TestTable(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	got := Table([]string{"ARCHIVE", "VERSION"}, [][]string{
		{"repos/foo-1.0.rpm", "1.0"},
		{"repos/foo-2.0.rpm", "2.0"},
	})
	for _, want := range []string{"ARCHIVE", "VERSION", "repos/foo-1.0.rpm", "2.0"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
	if lines := strings.Count(got, "\n"); lines < 4 {
		t.Errorf("expected bordered multi-line table, got:\n%s", got)
	}
}

func TestSetOutput_Restore(t *testing.T) {
	var first, second bytes.Buffer
	restore := SetOutput(&first, &first)
	inner := SetOutput(&second, &second)
	inner()
	Println("after inner restore")
	restore()

	if !strings.Contains(first.String(), "after inner restore") || second.Len() != 0 {
		t.Errorf("restore did not reinstate previous writers: first=%q second=%q", first.String(), second.String())
	}
}
