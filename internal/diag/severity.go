package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo marks findings that never affect the generated artifact.
	SevInfo Severity = iota
	// SevWarning marks inputs that were dropped from the export table.
	SevWarning
	// SevError stops the generation run.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}
