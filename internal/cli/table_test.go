package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTableAddRow(t *testing.T) {
	table := NewTable("Name", "Age")

	table.AddRow("Alice", "30")
	table.AddRow("Bob")
	table.AddRow("Charlie", "25", "Extra")

	if len(table.rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(table.rows))
	}
	if table.rows[1][1] != "" {
		t.Errorf("Expected empty string for padded column, got %q", table.rows[1][1])
	}
	if len(table.rows[2]) != 2 {
		t.Errorf("Expected row to be truncated to 2 columns, got %d", len(table.rows[2]))
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable("#", "Hex", "Weight")
	table.AddRow("1", "#ff0000", "75.0%")
	table.AddRow("2", "#00ff00", "25.0%")

	want := strings.Join([]string{
		"#  Hex      Weight",
		"-  -------  ------",
		"1  #ff0000  75.0%",
		"2  #00ff00  25.0%",
		"",
	}, "\n")

	if got := table.Render(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if got := NewTable().Render(); got != "" {
		t.Errorf("Expected empty string for table without headers, got %q", got)
	}

	got := NewTable("A", "B").Render()
	if lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n"); len(lines) != 2 {
		t.Errorf("Expected header and separator only, got %q", got)
	}
}

func TestTableMeasuresStyledCells(t *testing.T) {
	swatch := lipgloss.NewStyle().Background(lipgloss.Color("#ff0000")).Render("    ")

	table := NewTable("Swatch", "Hex")
	table.AddRow(swatch, "#ff0000")

	lines := strings.Split(table.Render(), "\n")
	if w := lipgloss.Width(lines[2]); w != lipgloss.Width(lines[1]) {
		t.Errorf("styled row width = %d, separator width = %d", w, lipgloss.Width(lines[1]))
	}
}

func TestTableWrapsColumns(t *testing.T) {
	table := NewTable("Name", "Description")
	table.SetColumnMaxWidth(1, 10)
	table.AddRow("colorCount", "How many dominant colors to extract")

	lines := strings.Split(strings.TrimSuffix(table.Render(), "\n"), "\n")
	if len(lines) < 4 {
		t.Fatalf("Expected wrapped description, got %q", lines)
	}
	if !strings.HasPrefix(lines[2], "colorCount  How many") {
		t.Errorf("first row line = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "            dominant") {
		t.Errorf("continuation line = %q", lines[3])
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abc", 3, "abc"},
		{"abcdef", 3, "abcdef"},
		{"", 2, "  "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.width); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"short", 10, []string{"short"}},
		{"no limit at all", 0, []string{"no limit at all"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
	}

	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}
