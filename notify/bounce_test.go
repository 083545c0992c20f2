package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOutcomes(t *testing.T, db *gorm.DB, domain string, total, bounced int) {
	t.Helper()

	for i := 0; i < total; i++ {
		outcome := certification.DeliveryOutcome{
			CertificateRequestID: uint(i + 1),
			RecipientEmail:       fmt.Sprintf("user%d@%s", i, domain),
			Domain:               domain,
			Kind:                 string(KindApproved),
			Bounced:              i < bounced,
		}
		require.NoError(t, db.Create(&outcome).Error)
	}
}

func TestBounceMonitorRaisesAlertAboveThreshold(t *testing.T) {
	db := setupTestDB(t)
	seedOutcomes(t, db, "flaky.example.com", 20, 3) // 15%

	monitor := NewBounceMonitor(db, BounceSettings{})
	alerts, err := monitor.Evaluate()
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, certification.AlertTypeBounceRate, alert.AlertType)
	assert.Equal(t, certification.SeverityHigh, alert.Severity)
	assert.Equal(t, "flaky.example.com", alert.Domain)
	assert.InDelta(t, 0.15, alert.BounceRate, 0.001)
	assert.Equal(t, 20, alert.SampleSize)
	assert.Contains(t, alert.Message, "flaky.example.com")
}

func TestBounceMonitorCriticalSeverity(t *testing.T) {
	db := setupTestDB(t)
	seedOutcomes(t, db, "dead.example.com", 12, 3) // 25%

	monitor := NewBounceMonitor(db, BounceSettings{})
	alerts, err := monitor.Evaluate()
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, certification.SeverityCritical, alerts[0].Severity)
}

func TestBounceMonitorIgnoresSmallSamples(t *testing.T) {
	db := setupTestDB(t)
	// Every email bounced, but the sample is too small to trust.
	seedOutcomes(t, db, "tiny.example.com", 5, 5)

	monitor := NewBounceMonitor(db, BounceSettings{})
	alerts, err := monitor.Evaluate()
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestBounceMonitorThresholdsAreStrict(t *testing.T) {
	db := setupTestDB(t)
	seedOutcomes(t, db, "edge.example.com", 20, 2)    // exactly 10%
	seedOutcomes(t, db, "minimum.example.com", 10, 9) // exactly at min sample

	monitor := NewBounceMonitor(db, BounceSettings{})
	alerts, err := monitor.Evaluate()
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestBounceMonitorHealthyDomainsQuiet(t *testing.T) {
	db := setupTestDB(t)
	seedOutcomes(t, db, "healthy.example.com", 50, 2) // 4%

	monitor := NewBounceMonitor(db, BounceSettings{})
	alerts, err := monitor.Evaluate()
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestBounceMonitorDeduplicatesAlerts(t *testing.T) {
	db := setupTestDB(t)
	seedOutcomes(t, db, "flaky.example.com", 20, 5)

	monitor := NewBounceMonitor(db, BounceSettings{})

	first, err := monitor.Evaluate()
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The condition persists on the next scan; no second alert inside the
	// dedup window.
	second, err := monitor.Evaluate()
	require.NoError(t, err)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, db.Model(&certification.DeliveryAlert{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBounceMonitorWindowExcludesOldOutcomes(t *testing.T) {
	db := setupTestDB(t)
	seedOutcomes(t, db, "flaky.example.com", 20, 5)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&certification.DeliveryOutcome{}).
		Where("domain = ?", "flaky.example.com").
		Update("created_at", old).Error)

	monitor := NewBounceMonitor(db, BounceSettings{WindowHours: 24})
	alerts, err := monitor.Evaluate()
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestBounceMonitorSeparatesDomains(t *testing.T) {
	db := setupTestDB(t)
	seedOutcomes(t, db, "flaky.example.com", 20, 5)
	seedOutcomes(t, db, "healthy.example.com", 20, 0)

	monitor := NewBounceMonitor(db, BounceSettings{})
	alerts, err := monitor.Evaluate()
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, "flaky.example.com", alerts[0].Domain)
}
