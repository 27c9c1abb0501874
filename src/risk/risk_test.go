package risk

import "testing"

func TestClassifyKnownLabels(t *testing.T) {
	cases := []struct {
		assessment string
		severity   Severity
		icon       string
	}{
		{"HIGH_RISK", SeverityHigh, "dangerous"},
		{"MODERATE_RISK", SeverityModerate, "warning"},
		{"LOW_RISK", SeverityLow, "check_circle"},
		{"UNVERIFIABLE", SeverityUnverifiable, "help"},
		{"LIMITED_VERIFICATION", SeverityUnverifiable, "help"},
	}
	for _, c := range cases {
		band := Classify(c.assessment)
		if band.Severity != c.severity || band.Icon != c.icon {
			t.Errorf("Classify(%q) = %+v, want %s/%s", c.assessment, band, c.severity, c.icon)
		}
	}
}

func TestClassifyIsTotal(t *testing.T) {
	// Labels the service might grow tomorrow must land in the unknown band,
	// never fail.
	for _, assessment := range []string{"", "ANALYSIS_ERROR", "SOMETHING_NEW", "high_risk", "  "} {
		band := Classify(assessment)
		if band.Severity != SeverityUnknown {
			t.Errorf("Classify(%q).Severity = %q, want unknown", assessment, band.Severity)
		}
		if band.Icon == "" {
			t.Errorf("Classify(%q) returned empty icon", assessment)
		}
	}
}
