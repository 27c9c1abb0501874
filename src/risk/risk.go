// Package risk maps the service's credibility verdict onto a display band.
package risk

// Severity is the client-side display tier.
type Severity string

const (
	SeverityHigh         Severity = "high"
	SeverityModerate     Severity = "moderate"
	SeverityLow          Severity = "low"
	SeverityUnverifiable Severity = "unverifiable"
	SeverityUnknown      Severity = "unknown"
)

// Band pairs a severity tier with the icon shown next to it.
type Band struct {
	Severity Severity
	Icon     string
}

// Classify is total over every assessment string. The service's vocabulary
// can grow; anything unrecognized lands in the unknown band rather than
// failing.
func Classify(assessment string) Band {
	switch assessment {
	case "HIGH_RISK":
		return Band{Severity: SeverityHigh, Icon: "dangerous"}
	case "MODERATE_RISK":
		return Band{Severity: SeverityModerate, Icon: "warning"}
	case "LOW_RISK":
		return Band{Severity: SeverityLow, Icon: "check_circle"}
	case "UNVERIFIABLE", "LIMITED_VERIFICATION":
		return Band{Severity: SeverityUnverifiable, Icon: "help"}
	default:
		return Band{Severity: SeverityUnknown, Icon: "info"}
	}
}
