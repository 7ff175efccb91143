package domain

import (
	"fmt"
	"strings"
)

type CheckOutcome struct {
	Severity Severity
	Message  string
}

func NewOutcome(severity Severity, format string, args ...interface{}) CheckOutcome {
	return CheckOutcome{
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Line renders the outcome as the single line printed on stdout.
func (o CheckOutcome) Line() string {
	return fmt.Sprintf("%s: %s", o.Severity, lineBreaks.Replace(o.Message))
}
