package x12

import "fmt"

// Severity classifies a diagnostic produced while validating or parsing
// an X12 document.
type Severity string

const (
	// SeverityError marks a fatal defect: parsing of the affected scope
	// does not proceed.
	SeverityError Severity = "error"
	// SeverityWarning marks an advisory defect: parsing continues.
	SeverityWarning Severity = "warning"
)

// Diagnostic describes one structural or semantic defect found in an
// inbound document. Position is the zero-based segment index when known,
// or -1 when the defect is not tied to a specific segment.
type Diagnostic struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Segment  string   `json:"segment,omitempty"`
	Position int      `json:"position"`
}

func (d Diagnostic) String() string {
	if d.Segment == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", d.Severity, d.Segment, d.Message)
}

func errorDiag(segment string, position int, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
		Segment:  segment,
		Position: position,
	}
}

func warnDiag(segment string, position int, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
		Segment:  segment,
		Position: position,
	}
}

// HasFatal reports whether any diagnostic in the list is error-severity.
func HasFatal(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
