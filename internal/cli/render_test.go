package cli

import (
	"slices"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name   string
		flag   string
		output string
		want   []string
	}{
		{"empty defaults to svg", "", "", []string{"svg"}},
		{"output extension", "", "net.dot", []string{"dot"}},
		{"unknown extension", "", "net.pdf", []string{"svg"}},
		{"flag wins", "png", "net.dot", []string{"png"}},
		{"multiple formats", "svg,png,dot", "", []string{"svg", "png", "dot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.flag, tt.output); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q, %q) = %v, want %v", tt.flag, tt.output, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg"}, false},
		{[]string{"svg", "png", "dot"}, false},
		{[]string{"pdf"}, true},
		{[]string{"svg", "json"}, true},
		{nil, false},
	}
	for _, tt := range tests {
		if err := validateFormats(tt.formats); (err != nil) != tt.wantErr {
			t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, fallback, format string
		multiple                 bool
		want                     string
	}{
		{"-", "p.json", "svg", false, ""},
		{"", "plans/p.json", "svg", false, "plans/p.svg"},
		{"", "site-7", "png", true, "site-7.png"},
		{"out.svg", "p.json", "svg", false, "out.svg"},
		{"diagram", "p.json", "svg", false, "diagram"},
		{"out.svg", "p.json", "png", true, "out.png"},
		{"out", "p.json", "dot", true, "out.dot"},
	}
	for _, tt := range tests {
		got := outputPath(tt.output, tt.fallback, tt.format, tt.multiple)
		if got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %v) = %q, want %q",
				tt.output, tt.fallback, tt.format, tt.multiple, got, tt.want)
		}
	}
}
