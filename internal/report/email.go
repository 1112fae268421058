package report

import (
	"fmt"
	"strings"
)

// EmailSubject is the subject line for report delivery.
const EmailSubject = ReportTitle

// EmailBody is the plain-text body sent with the attached report.
func EmailBody(doc Document) string {
	var b strings.Builder
	name := strings.TrimSpace(doc.Request.Name)
	if name == "" {
		name = "Applicant"
	}
	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	b.WriteString("Please find attached your subsidy calculation report.\n\n")
	for _, l := range ResultLines(doc.Result) {
		fmt.Fprintf(&b, "%s: %s\n", l.Label, l.Value)
	}
	return b.String()
}
