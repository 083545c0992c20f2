package certification

import "gorm.io/gorm"

// Alert severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert types
const (
	AlertTypeBounceRate = "HIGH_BOUNCE_RATE"
)

// DeliveryOutcome records the result of a single mail transport call,
// keyed by the recipient domain for bounce-rate aggregation.
type DeliveryOutcome struct {
	gorm.Model
	CertificateRequestID uint   `json:"certificate_request_id" gorm:"index"`
	RecipientEmail       string `json:"recipient_email"`
	Domain               string `json:"domain" gorm:"index;not null"`
	Kind                 string `json:"kind"`
	MessageID            string `json:"message_id"`
	Bounced              bool   `json:"bounced" gorm:"default:false"`
	ErrorMessage         string `json:"error_message"`
}

// DeliveryAlert is raised when a destination domain exceeds the configured
// bounce-rate threshold over the trailing window. At most one alert per
// type+domain is created within the dedup window.
type DeliveryAlert struct {
	gorm.Model
	AlertType  string  `json:"alert_type" gorm:"index;not null"`
	Severity   string  `json:"severity" gorm:"not null"`
	Domain     string  `json:"domain" gorm:"index;not null"`
	BounceRate float64 `json:"bounce_rate"`
	SampleSize int     `json:"sample_size"`
	Message    string  `json:"message"`
}
