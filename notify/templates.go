package notify

import "fmt"

// HTML wrapper shared by all notification kinds
func emailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B365D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B365D; line-height: 1.6; }
			.content h2 { color: #1B365D; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #C8102E; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #C8102E; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>ASSURED RESPONSE TRAINING</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Assured Response Training Centre. All rights reserved.<br>
				This is an automated message regarding your certification record.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// Render produces the subject line and HTML body for an event. Absent
// optional fields (certificate URL, rejection reason, batch code) are
// omitted from the body rather than rendered empty.
func Render(event Event) (subject string, htmlBody string) {
	name := event.RecipientName
	if name == "" {
		name = "Student"
	}

	switch event.Kind {
	case KindApproved:
		subject = "Your Certificate Has Been Approved"
		if event.CourseTitle != "" {
			subject = "Certificate Approved: " + event.CourseTitle
		}
		body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Great news! Your certificate request has been <strong>APPROVED</strong>.</p>`, name)
		if event.CourseTitle != "" {
			body += fmt.Sprintf(`
		<p>Course: <strong>%s</strong></p>`, event.CourseTitle)
		}
		if event.VerificationCode != "" {
			body += fmt.Sprintf(`
		<div class="info-box">
			<strong>Verification Code:</strong> %s
		</div>`, event.VerificationCode)
		}
		if event.CertificateURL != "" {
			body += fmt.Sprintf(`
		<a href="%s" class="btn">Download Certificate</a>`, event.CertificateURL)
		}
		return subject, emailTemplate("Certificate Approved", body)

	case KindRejected:
		subject = "Your Certificate Request Was Rejected"
		if event.CourseTitle != "" {
			subject = "Certificate Request Rejected: " + event.CourseTitle
		}
		body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Unfortunately, your certificate request was <strong>REJECTED</strong>.</p>`, name)
		if event.RejectionReason != "" {
			body += fmt.Sprintf(`
		<div style="color: #dc3545; font-weight: bold;">Reason: %s</div>`, event.RejectionReason)
		}
		body += `
		<p>Please contact your training coordinator if you believe this is an error.</p>`
		return subject, emailTemplate("Request Rejected", body)

	case KindArchived:
		subject = "Your Certificate Request Has Been Archived"
		body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate request has been archived following the assessment outcome.</p>
		<p>You may re-enroll and complete the assessment again to request a new certificate.</p>`, name)
		return subject, emailTemplate("Request Archived", body)

	case KindBatchSubmitted:
		subject = "Certificate Batch Submitted"
		body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>A batch of certificate requests has been submitted for review.</p>`, name)
		if event.BatchCode != "" {
			body += fmt.Sprintf(`
		<div class="info-box"><strong>Batch:</strong> %s</div>`, event.BatchCode)
		}
		if event.BatchCount > 0 {
			body += fmt.Sprintf(`
		<p>Requests in batch: <strong>%d</strong></p>`, event.BatchCount)
		}
		return subject, emailTemplate("Batch Submitted", body)

	case KindBatchApproved:
		subject = "Certificate Batch Approved"
		body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate batch has been <strong>APPROVED</strong>. Individual certificates are being generated now.</p>`, name)
		if event.BatchCode != "" {
			body += fmt.Sprintf(`
		<div class="info-box"><strong>Batch:</strong> %s</div>`, event.BatchCode)
		}
		return subject, emailTemplate("Batch Approved", body)

	case KindBatchRejected:
		subject = "Certificate Batch Rejected"
		body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate batch was <strong>REJECTED</strong>.</p>`, name)
		if event.BatchCode != "" {
			body += fmt.Sprintf(`
		<div class="info-box"><strong>Batch:</strong> %s</div>`, event.BatchCode)
		}
		if event.RejectionReason != "" {
			body += fmt.Sprintf(`
		<div style="color: #dc3545; font-weight: bold;">Reason: %s</div>`, event.RejectionReason)
		}
		return subject, emailTemplate("Batch Rejected", body)

	default:
		subject = "Certification Status Update"
		body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>The status of your certificate request has changed from <strong>%s</strong> to <strong>%s</strong>.</p>`,
			name, event.OldStatus, event.NewStatus)
		return subject, emailTemplate("Status Update", body)
	}
}
