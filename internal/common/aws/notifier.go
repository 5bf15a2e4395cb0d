package aws

import "context"

// Notifier delivers a short plain text message to operators.
type Notifier interface {
	Channel() string
	Notify(ctx context.Context, subject, message string) error
}

// maxSubjectLength is the SNS limit; SES accepts longer subjects but the
// same summary subject is sent to both.
const maxSubjectLength = 100

func truncateSubject(subject string) string {
	if len(subject) <= maxSubjectLength {
		return subject
	}
	return subject[:maxSubjectLength]
}
