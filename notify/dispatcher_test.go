package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&courseModels.Course{},
		&certification.CertificateRequest{},
		&certification.Certificate{},
		&certification.NotificationRetry{},
		&certification.DeliveryOutcome{},
		&certification.DeliveryAlert{},
	))
	return db
}

// fakeTransport answers sends with a scripted outcome.
type fakeTransport struct {
	messageID   string
	err         error
	calls       int
	lastTo      string
	lastSubject string
	lastBody    string
}

func (f *fakeTransport) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	f.calls++
	f.lastTo = to
	f.lastSubject = subject
	f.lastBody = htmlBody
	return f.messageID, f.err
}

func approvedEvent(requestID uint) Event {
	return Event{
		Kind:           KindApproved,
		RequestID:      requestID,
		RecipientName:  "Jordan Blake",
		RecipientEmail: "jordan@students.example.com",
		CourseTitle:    "Standard First Aid",
	}
}

func TestDispatchSuccessRecordsOutcome(t *testing.T) {
	db := setupTestDB(t)
	transport := &fakeTransport{messageID: "msg-001"}
	dispatcher := NewDispatcher(db, transport, DispatcherSettings{})

	err := dispatcher.Dispatch(approvedEvent(1))
	require.NoError(t, err)
	assert.Equal(t, "jordan@students.example.com", transport.lastTo)

	var outcome certification.DeliveryOutcome
	require.NoError(t, db.First(&outcome).Error)
	assert.Equal(t, "msg-001", outcome.MessageID)
	assert.Equal(t, "students.example.com", outcome.Domain)
	assert.False(t, outcome.Bounced)
	assert.Empty(t, outcome.ErrorMessage)

	var retries int64
	require.NoError(t, db.Model(&certification.NotificationRetry{}).Count(&retries).Error)
	assert.Zero(t, retries)
}

func TestDispatchFailureEnqueuesImmediateRetry(t *testing.T) {
	db := setupTestDB(t)
	transport := &fakeTransport{err: errors.New("connection timed out")}
	dispatcher := NewDispatcher(db, transport, DispatcherSettings{})

	err := dispatcher.Dispatch(approvedEvent(5))
	require.Error(t, err)

	var entry certification.NotificationRetry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, uint(5), entry.CertificateRequestID)
	assert.Equal(t, string(KindApproved), entry.Kind)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Equal(t, certification.RetryPending, entry.Status)
	assert.Contains(t, entry.LastError, "connection timed out")
	assert.WithinDuration(t, time.Now(), entry.NextRetryAt, 5*time.Second)
}

func TestDispatchFailureDoesNotDoubleSchedule(t *testing.T) {
	db := setupTestDB(t)
	transport := &fakeTransport{err: errors.New("connection timed out")}
	dispatcher := NewDispatcher(db, transport, DispatcherSettings{})

	require.Error(t, dispatcher.Dispatch(approvedEvent(5)))
	require.Error(t, dispatcher.Dispatch(approvedEvent(5)))

	var retries int64
	require.NoError(t, db.Model(&certification.NotificationRetry{}).Count(&retries).Error)
	assert.EqualValues(t, 1, retries)
}

func TestPermanentFailureRecordsBounce(t *testing.T) {
	db := setupTestDB(t)
	transport := &fakeTransport{err: Permanent(errors.New("550 mailbox unavailable"))}
	dispatcher := NewDispatcher(db, transport, DispatcherSettings{})

	require.Error(t, dispatcher.Dispatch(approvedEvent(9)))

	var outcome certification.DeliveryOutcome
	require.NoError(t, db.First(&outcome).Error)
	assert.True(t, outcome.Bounced)
	assert.Contains(t, outcome.ErrorMessage, "550")

	// Permanent delivery errors still enter the retry queue; the bounce flag
	// feeds the domain monitor instead of short-circuiting retries.
	var retries int64
	require.NoError(t, db.Model(&certification.NotificationRetry{}).Count(&retries).Error)
	assert.EqualValues(t, 1, retries)
}

func TestDispatchFailurePersistsDispatchContext(t *testing.T) {
	db := setupTestDB(t)
	transport := &fakeTransport{err: errors.New("connection timed out")}
	dispatcher := NewDispatcher(db, transport, DispatcherSettings{})

	event := Event{
		Kind:            KindBatchRejected,
		RequestID:       7,
		RecipientName:   "Jordan Blake",
		RecipientEmail:  "jordan@students.example.com",
		BatchCode:       "B-2026-03",
		BatchCount:      4,
		RejectionReason: "Venue closed during assessment week",
	}
	require.Error(t, dispatcher.Dispatch(event))

	// The operator note and batch size exist only at dispatch time; the
	// entry carries them so a redelivery renders the same message.
	var entry certification.NotificationRetry
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "Venue closed during assessment week", entry.Note)
	assert.Equal(t, 4, entry.BatchCount)
}

func TestPermanentErrorClassification(t *testing.T) {
	base := errors.New("551 user not local")

	assert.False(t, IsPermanent(base))
	assert.True(t, IsPermanent(Permanent(base)))
	assert.True(t, IsPermanent(fmt.Errorf("send to x failed: %w", Permanent(base))))
}
