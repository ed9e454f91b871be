package diag

// Severity ranks a diagnostic; a higher value is more serious. The zero
// value means unset.
type Severity uint8

const (
	SevWarning Severity = iota + 1
	SevError
)

var severityNames = [...]string{
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) && severityNames[s] != "" {
		return severityNames[s]
	}
	return "UNKNOWN"
}
