package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRetryFixture(t *testing.T, db *gorm.DB) *certification.CertificateRequest {
	t.Helper()

	course := courseModels.Course{Title: "Standard First Aid", Provider: "Assured Response"}
	require.NoError(t, db.Create(&course).Error)

	request := certification.CertificateRequest{
		UserID:           42,
		RecipientName:    "Jordan Blake",
		RecipientEmail:   "jordan@students.example.com",
		CourseID:         course.ID,
		AssessmentResult: courseModels.AssessmentPass,
		Status:           certification.StatusRejected,
		RejectionReason:  "Incomplete attendance record",
		RequestedAt:      time.Now(),
	}
	require.NoError(t, db.Create(&request).Error)
	return &request
}

func seedRetryEntry(t *testing.T, db *gorm.DB, requestID uint, count int) *certification.NotificationRetry {
	t.Helper()

	entry := certification.NotificationRetry{
		CertificateRequestID: requestID,
		Kind:                 string(KindRejected),
		RetryCount:           count,
		NextRetryAt:          time.Now().Add(-time.Minute),
		Status:               certification.RetryPending,
		LastError:            "connection timed out",
	}
	require.NoError(t, db.Create(&entry).Error)
	return &entry
}

// forceAllDue rewinds every pending entry so the next ProcessDue picks it up.
func forceAllDue(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Model(&certification.NotificationRetry{}).
		Where("status = ?", certification.RetryPending).
		Update("next_retry_at", time.Now().Add(-time.Minute)).Error)
}

func TestRetrySuccessCompletesEntry(t *testing.T) {
	db := setupTestDB(t)
	request := seedRetryFixture(t, db)
	entry := seedRetryEntry(t, db, request.ID, 0)

	transport := &fakeTransport{messageID: "msg-retry-1"}
	processor := NewRetryProcessor(db, transport, RetrySettings{})

	stats, err := processor.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RetryStats{Processed: 1, Failed: 0, Total: 1}, stats)
	assert.Equal(t, 1, transport.calls)
	assert.Equal(t, "jordan@students.example.com", transport.lastTo)

	var reloaded certification.NotificationRetry
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, certification.RetryCompleted, reloaded.Status)

	var total int64
	require.NoError(t, db.Model(&certification.NotificationRetry{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestRetryFailureBacksOffExponentially(t *testing.T) {
	db := setupTestDB(t)
	request := seedRetryFixture(t, db)
	seedRetryEntry(t, db, request.ID, 0)

	transport := &fakeTransport{err: errors.New("connection timed out")}
	processor := NewRetryProcessor(db, transport, RetrySettings{})

	expectedDelays := []time.Duration{
		30 * time.Minute,
		60 * time.Minute,
		120 * time.Minute,
	}

	for attempt, delay := range expectedDelays {
		forceAllDue(t, db)
		stats, err := processor.ProcessDue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)

		var successor certification.NotificationRetry
		require.NoError(t, db.
			Where("status = ?", certification.RetryPending).
			First(&successor).Error)
		assert.Equal(t, attempt+1, successor.RetryCount)
		assert.WithinDuration(t, time.Now().Add(delay), successor.NextRetryAt, 10*time.Second)
	}
}

func TestRetryExhaustionIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	request := seedRetryFixture(t, db)
	seedRetryEntry(t, db, request.ID, 0)

	transport := &fakeTransport{err: errors.New("connection timed out")}
	processor := NewRetryProcessor(db, transport, RetrySettings{MaxRetries: 3})

	// Attempt counts 0 through 3, then stop.
	for i := 0; i < 4; i++ {
		forceAllDue(t, db)
		_, err := processor.ProcessDue(context.Background())
		require.NoError(t, err)
	}

	var pending int64
	require.NoError(t, db.Model(&certification.NotificationRetry{}).
		Where("status = ?", certification.RetryPending).Count(&pending).Error)
	assert.Zero(t, pending)

	var entries []certification.NotificationRetry
	require.NoError(t, db.Order("retry_count asc").Find(&entries).Error)
	require.Len(t, entries, 4)
	for i, e := range entries {
		assert.Equal(t, i, e.RetryCount)
		assert.Equal(t, certification.RetryFailed, e.Status)
	}
	assert.Equal(t, 4, transport.calls)
}

func TestRetrySkipsEntriesNotYetDue(t *testing.T) {
	db := setupTestDB(t)
	request := seedRetryFixture(t, db)

	entry := certification.NotificationRetry{
		CertificateRequestID: request.ID,
		Kind:                 string(KindRejected),
		NextRetryAt:          time.Now().Add(time.Hour),
		Status:               certification.RetryPending,
	}
	require.NoError(t, db.Create(&entry).Error)

	transport := &fakeTransport{}
	processor := NewRetryProcessor(db, transport, RetrySettings{})

	stats, err := processor.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, transport.calls)

	var reloaded certification.NotificationRetry
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, certification.RetryPending, reloaded.Status)
}

func TestRetrySkipsClaimedEntries(t *testing.T) {
	db := setupTestDB(t)
	request := seedRetryFixture(t, db)

	entry := certification.NotificationRetry{
		CertificateRequestID: request.ID,
		Kind:                 string(KindRejected),
		NextRetryAt:          time.Now().Add(-time.Minute),
		Status:               certification.RetryProcessing,
	}
	require.NoError(t, db.Create(&entry).Error)

	transport := &fakeTransport{}
	processor := NewRetryProcessor(db, transport, RetrySettings{})

	stats, err := processor.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, transport.calls)
}

func TestRetryForDeletedRequestFails(t *testing.T) {
	db := setupTestDB(t)
	request := seedRetryFixture(t, db)
	entry := seedRetryEntry(t, db, request.ID, 0)
	require.NoError(t, db.Model(request).Update("is_deleted", true).Error)

	transport := &fakeTransport{messageID: "unused"}
	processor := NewRetryProcessor(db, transport, RetrySettings{})

	stats, err := processor.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, transport.calls)

	var reloaded certification.NotificationRetry
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, certification.RetryFailed, reloaded.Status)
}

func TestRetryRedeliversDispatchContext(t *testing.T) {
	db := setupTestDB(t)
	request := seedRetryFixture(t, db)

	entry := certification.NotificationRetry{
		CertificateRequestID: request.ID,
		Kind:                 string(KindBatchRejected),
		NextRetryAt:          time.Now().Add(-time.Minute),
		Status:               certification.RetryPending,
		Note:                 "Venue closed during assessment week",
		BatchCount:           4,
	}
	require.NoError(t, db.Create(&entry).Error)

	// First attempt fails: the successor must carry the dispatch context.
	failing := &fakeTransport{err: errors.New("connection timed out")}
	_, err := NewRetryProcessor(db, failing, RetrySettings{}).ProcessDue(context.Background())
	require.NoError(t, err)

	var successor certification.NotificationRetry
	require.NoError(t, db.Where("status = ?", certification.RetryPending).First(&successor).Error)
	assert.Equal(t, "Venue closed during assessment week", successor.Note)
	assert.Equal(t, 4, successor.BatchCount)

	// Second attempt succeeds: the redelivered message renders the original
	// operator note, not the request's own rejection reason.
	forceAllDue(t, db)
	succeeding := &fakeTransport{messageID: "msg-batch-1"}
	_, err = NewRetryProcessor(db, succeeding, RetrySettings{}).ProcessDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Certificate Batch Rejected", succeeding.lastSubject)
	assert.Contains(t, succeeding.lastBody, "Venue closed during assessment week")
	assert.NotContains(t, succeeding.lastBody, "Incomplete attendance record")
}

func TestRetryHonorsBatchSize(t *testing.T) {
	db := setupTestDB(t)
	request := seedRetryFixture(t, db)
	for i := 0; i < 5; i++ {
		entry := certification.NotificationRetry{
			CertificateRequestID: request.ID,
			Kind:                 string(KindRejected),
			NextRetryAt:          time.Now().Add(-time.Duration(i+1) * time.Minute),
			Status:               certification.RetryPending,
		}
		require.NoError(t, db.Create(&entry).Error)
	}

	transport := &fakeTransport{messageID: "ok"}
	processor := NewRetryProcessor(db, transport, RetrySettings{BatchSize: 2})

	stats, err := processor.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, transport.calls)
}
