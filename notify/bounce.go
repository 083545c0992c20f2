package notify

import (
	"fmt"
	"log"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	"gorm.io/gorm"
)

// BounceSettings configures the bounce monitor thresholds.
type BounceSettings struct {
	WindowHours  int     // trailing aggregation window, default 24
	MinSample    int     // alert only when total emails exceed this, default 10
	HighRate     float64 // bounce rate above this raises high severity, default 0.10
	CriticalRate float64 // bounce rate above this raises critical severity, default 0.20
	DedupHours   int     // suppress duplicate type+domain alerts within, default 24
}

// BounceMonitor aggregates delivery outcomes per destination domain over a
// trailing window and raises an alert record when the bounce rate exceeds
// the configured threshold.
type BounceMonitor struct {
	db       *gorm.DB
	settings BounceSettings
}

// NewBounceMonitor creates a monitor with the given thresholds.
func NewBounceMonitor(db *gorm.DB, settings BounceSettings) *BounceMonitor {
	if settings.WindowHours <= 0 {
		settings.WindowHours = 24
	}
	if settings.MinSample <= 0 {
		settings.MinSample = 10
	}
	if settings.HighRate <= 0 {
		settings.HighRate = 0.10
	}
	if settings.CriticalRate <= 0 {
		settings.CriticalRate = 0.20
	}
	if settings.DedupHours <= 0 {
		settings.DedupHours = 24
	}
	return &BounceMonitor{db: db, settings: settings}
}

type domainStat struct {
	Domain  string
	Total   int64
	Bounced int64
}

// Evaluate scans the trailing window and returns the alerts created by this
// invocation. An existing alert of the same type+domain inside the dedup
// window suppresses a new one entirely.
func (m *BounceMonitor) Evaluate() ([]certification.DeliveryAlert, error) {
	since := time.Now().Add(-time.Duration(m.settings.WindowHours) * time.Hour)

	var stats []domainStat
	err := m.db.Model(&certification.DeliveryOutcome{}).
		Select("domain, count(*) as total, sum(case when bounced then 1 else 0 end) as bounced").
		Where("created_at >= ? AND domain <> ''", since).
		Group("domain").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	var created []certification.DeliveryAlert
	dedupSince := time.Now().Add(-time.Duration(m.settings.DedupHours) * time.Hour)

	for _, stat := range stats {
		if stat.Total <= int64(m.settings.MinSample) {
			continue
		}
		rate := float64(stat.Bounced) / float64(stat.Total)
		if rate <= m.settings.HighRate {
			continue
		}

		var existing int64
		m.db.Model(&certification.DeliveryAlert{}).
			Where("alert_type = ? AND domain = ? AND created_at >= ?",
				certification.AlertTypeBounceRate, stat.Domain, dedupSince).
			Count(&existing)
		if existing > 0 {
			continue
		}

		severity := certification.SeverityHigh
		if rate > m.settings.CriticalRate {
			severity = certification.SeverityCritical
		}

		alert := certification.DeliveryAlert{
			AlertType:  certification.AlertTypeBounceRate,
			Severity:   severity,
			Domain:     stat.Domain,
			BounceRate: rate,
			SampleSize: int(stat.Total),
			Message: fmt.Sprintf("Domain %s bounced %d of %d emails (%.1f%%) in the last %dh",
				stat.Domain, stat.Bounced, stat.Total, rate*100, m.settings.WindowHours),
		}
		if err := m.db.Create(&alert).Error; err != nil {
			log.Printf("[BOUNCE] Failed to create alert for domain %s: %v", stat.Domain, err)
			continue
		}
		created = append(created, alert)
	}

	return created, nil
}
