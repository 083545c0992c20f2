package notify

import "strings"

// Kind identifies a notification template. The Event struct is a closed
// tagged union: rendering switches on Kind and ignores fields the kind
// does not use, so an absent optional field is simply omitted from the
// rendered body.
type Kind string

const (
	KindApproved       Kind = "CERTIFICATE_APPROVED"
	KindRejected       Kind = "CERTIFICATE_REJECTED"
	KindArchived       Kind = "CERTIFICATE_ARCHIVED"
	KindBatchSubmitted Kind = "BATCH_SUBMITTED"
	KindBatchApproved  Kind = "BATCH_APPROVED"
	KindBatchRejected  Kind = "BATCH_REJECTED"
)

// Event carries everything the dispatcher needs to render and deliver one
// status-change message.
type Event struct {
	Kind             Kind
	RequestID        uint
	RecipientName    string
	RecipientEmail   string
	CourseTitle      string
	OldStatus        string
	NewStatus        string
	RejectionReason  string
	CertificateURL   string
	VerificationCode string
	BatchCode        string
	BatchCount       int
}

// Domain extracts the destination domain of the event's recipient address.
func (e Event) Domain() string {
	return EmailDomain(e.RecipientEmail)
}

// EmailDomain returns the lowercased domain part of an email address, or
// "" when the address has no @.
func EmailDomain(address string) string {
	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	return strings.ToLower(address[at+1:])
}
