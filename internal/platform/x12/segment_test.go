package x12

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestBuildSegmentJoinsAndTerminates(t *testing.T) {
	got := DefaultDelimiters.BuildSegment("NM1", "IL", "1", "DOE", "JANE")
	want := "NM1*IL*1*DOE*JANE~"
	if got != want {
		t.Errorf("BuildSegment = %q, want %q", got, want)
	}
}

func TestBuildSegmentStripsStructuralCharacters(t *testing.T) {
	got := DefaultDelimiters.BuildSegment("N3", "123 MAIN*ST~SUITE 4")
	if strings.Count(got, "*") != 1 {
		t.Errorf("embedded element separator survived: %q", got)
	}
	if strings.Count(got, "~") != 1 {
		t.Errorf("embedded terminator survived: %q", got)
	}
}

func TestBuildSegmentPreservesComposites(t *testing.T) {
	got := DefaultDelimiters.BuildSegment("SV1", "HC:99213:25", "85.00")
	if !strings.Contains(got, "HC:99213:25") {
		t.Errorf("composite element was mangled: %q", got)
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SMITH*JONES", "SMITHJONES"},
		{"A~B^C:D", "ABCD"},
		{"CLEAN VALUE", "CLEAN VALUE"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	got, err := FormatDate(d)
	if err != nil {
		t.Fatalf("FormatDate: %v", err)
	}
	if got != "20240307" {
		t.Errorf("FormatDate = %q, want 20240307", got)
	}
}

func TestFormatDateRejectsZeroValue(t *testing.T) {
	_, err := FormatDate(time.Time{})
	if err == nil {
		t.Fatal("expected error for zero date")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Errorf("expected *FormatError, got %T", err)
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 0, 0, time.UTC)
	got, err := FormatTime(ts)
	if err != nil {
		t.Fatalf("FormatTime: %v", err)
	}
	if got != "0905" {
		t.Errorf("FormatTime = %q, want 0905", got)
	}
}

func TestFormatAmountAlwaysTwoDecimals(t *testing.T) {
	amountShape := regexp.MustCompile(`^\d+\.\d{2}$`)
	for _, v := range []float64{0, 1, 85, 85.5, 85.55, 1234.999, 0.01} {
		got := FormatAmount(v)
		if !amountShape.MatchString(got) {
			t.Errorf("FormatAmount(%v) = %q, want ^\\d+\\.\\d{2}$", v, got)
		}
	}
	if got := FormatAmount(85.5); got != "85.50" {
		t.Errorf("FormatAmount(85.5) = %q, want 85.50", got)
	}
}

func TestParseAmountNeverFails(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10.00", 10},
		{"-25.5", -25.5},
		{"  42 ", 42},
		{"", 0},
		{"abc", 0},
		{"12.3.4", 0},
	}
	for _, tt := range tests {
		if got := ParseAmount(tt.in); got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFixedWidth(t *testing.T) {
	if got := FixedWidth("AB", 5); got != "AB   " {
		t.Errorf("FixedWidth pad = %q", got)
	}
	if got := FixedWidth("ABCDEFG", 5); got != "ABCDE" {
		t.Errorf("FixedWidth truncate = %q", got)
	}
	if got := FixedWidth("", 3); got != "   " {
		t.Errorf("FixedWidth empty = %q", got)
	}
}

func TestZeroPad(t *testing.T) {
	if got := ZeroPad(42, 9); got != "000000042" {
		t.Errorf("ZeroPad = %q", got)
	}
	if got := ZeroPad(1234, 4); got != "1234" {
		t.Errorf("ZeroPad exact = %q", got)
	}
}

func TestFormatNPI(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1234567890", "1234567890", false},
		{"123-456-7890", "1234567890", false},
		{" 1234567890 ", "1234567890", false},
		{"123456789", "", true},
		{"12345678901", "", true},
		{"ABCDEFGHIJ", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := FormatNPI(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FormatNPI(%q): expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("FormatNPI(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatNPI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	if got := formatUnits(1); got != "1" {
		t.Errorf("formatUnits(1) = %q", got)
	}
	if got := formatUnits(2.5); got != "2.5" {
		t.Errorf("formatUnits(2.5) = %q", got)
	}
}
