package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator returns a scripted result and counts invocations.
type fakeGenerator struct {
	artifactRef string
	err         error
	calls       int
}

func (f *fakeGenerator) Generate(ctx context.Context, request *certification.CertificateRequest, issuerID uint) (string, error) {
	f.calls++
	return f.artifactRef, f.err
}

func TestApprovalPipelineIssuesCertificate(t *testing.T) {
	db := setupTestDB(t)
	notifier := &fakeNotifier{}
	engine := NewEngine(db, notifier)
	generator := &fakeGenerator{artifactRef: "https://certs.example.com/doc/abc123.pdf"}
	coordinator := NewCoordinator(db, generator, CoordinatorSettings{Timeout: 5 * time.Second})

	request := seedRequest(t, db, courseModels.AssessmentPass)

	updated, err := engine.Transition(request.ID, certification.StatusApproved, 7, "")
	require.NoError(t, err)
	require.Equal(t, certification.StatusProcessing, updated.Status)

	certificate, err := coordinator.OnApproved(context.Background(), request.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, certificate)

	assert.Equal(t, "https://certs.example.com/doc/abc123.pdf", certificate.CertificateURL)
	assert.NotEmpty(t, certificate.VerificationCode)
	assert.Equal(t, request.ID, certificate.RequestID)
	assert.Equal(t, uint(42), certificate.UserID)

	var reloaded certification.CertificateRequest
	require.NoError(t, db.First(&reloaded, request.ID).Error)
	assert.Equal(t, certification.StatusApproved, reloaded.Status)
	require.NotNil(t, reloaded.CertificateID)
	assert.Equal(t, certificate.ID, *reloaded.CertificateID)
}

func TestGenerationFailureMarksApprovalFailed(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, &fakeNotifier{})
	generator := &fakeGenerator{err: errors.New("render service returned 503")}
	coordinator := NewCoordinator(db, generator, CoordinatorSettings{})

	request := seedRequest(t, db, courseModels.AssessmentPass)

	_, err := engine.Transition(request.ID, certification.StatusApproved, 7, "")
	require.NoError(t, err)

	certificate, err := coordinator.OnApproved(context.Background(), request.ID, 7)
	require.Error(t, err)
	assert.Nil(t, certificate)

	var reloaded certification.CertificateRequest
	require.NoError(t, db.First(&reloaded, request.ID).Error)
	assert.Equal(t, certification.StatusApprovalFailed, reloaded.Status)
	assert.Contains(t, reloaded.GenerationError, "503")

	var count int64
	require.NoError(t, db.Model(&certification.Certificate{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOnApprovedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, &fakeNotifier{})
	generator := &fakeGenerator{artifactRef: "https://certs.example.com/doc/one.pdf"}
	coordinator := NewCoordinator(db, generator, CoordinatorSettings{})

	request := seedRequest(t, db, courseModels.AssessmentPass)

	_, err := engine.Transition(request.ID, certification.StatusApproved, 7, "")
	require.NoError(t, err)

	first, err := coordinator.OnApproved(context.Background(), request.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := coordinator.OnApproved(context.Background(), request.ID, 7)
	require.NoError(t, err)
	assert.Nil(t, second)

	assert.Equal(t, 1, generator.calls)

	var count int64
	require.NoError(t, db.Model(&certification.Certificate{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestOnApprovedIgnoresNonProcessingRequest(t *testing.T) {
	db := setupTestDB(t)
	generator := &fakeGenerator{artifactRef: "unused"}
	coordinator := NewCoordinator(db, generator, CoordinatorSettings{})

	request := seedRequest(t, db, courseModels.AssessmentPass)

	certificate, err := coordinator.OnApproved(context.Background(), request.ID, 7)
	require.NoError(t, err)
	assert.Nil(t, certificate)
	assert.Zero(t, generator.calls)
}

func TestRecoverStaleDrivesStuckRequests(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, &fakeNotifier{})
	generator := &fakeGenerator{artifactRef: "https://certs.example.com/doc/recovered.pdf"}
	coordinator := NewCoordinator(db, generator, CoordinatorSettings{})

	request := seedRequest(t, db, courseModels.AssessmentPass)

	// Approval lands in PROCESSING; the process dies before generation runs.
	_, err := engine.Transition(request.ID, certification.StatusApproved, 7, "")
	require.NoError(t, err)

	recovered, err := coordinator.RecoverStale(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, recovered)
	assert.Equal(t, 1, generator.calls)

	var reloaded certification.CertificateRequest
	require.NoError(t, db.First(&reloaded, request.ID).Error)
	assert.Equal(t, certification.StatusApproved, reloaded.Status)
	require.NotNil(t, reloaded.CertificateID)

	var count int64
	require.NoError(t, db.Model(&certification.Certificate{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecoverStaleLeavesFreshRequests(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, &fakeNotifier{})
	generator := &fakeGenerator{artifactRef: "unused"}
	coordinator := NewCoordinator(db, generator, CoordinatorSettings{})

	request := seedRequest(t, db, courseModels.AssessmentPass)
	_, err := engine.Transition(request.ID, certification.StatusApproved, 7, "")
	require.NoError(t, err)

	// Reviewed seconds ago: still within the stale threshold.
	recovered, err := coordinator.RecoverStale(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, recovered)
	assert.Zero(t, generator.calls)

	var reloaded certification.CertificateRequest
	require.NoError(t, db.First(&reloaded, request.ID).Error)
	assert.Equal(t, certification.StatusProcessing, reloaded.Status)
}

func TestRecoverStaleResolvesRepeatedGenerationFailure(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, &fakeNotifier{})
	generator := &fakeGenerator{err: errors.New("render service returned 503")}
	coordinator := NewCoordinator(db, generator, CoordinatorSettings{})

	request := seedRequest(t, db, courseModels.AssessmentPass)
	_, err := engine.Transition(request.ID, certification.StatusApproved, 7, "")
	require.NoError(t, err)

	recovered, err := coordinator.RecoverStale(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, recovered)

	// Not recovered, but no longer stuck either.
	var reloaded certification.CertificateRequest
	require.NoError(t, db.First(&reloaded, request.ID).Error)
	assert.Equal(t, certification.StatusApprovalFailed, reloaded.Status)
}

func TestRecoverStaleIgnoresOtherStatuses(t *testing.T) {
	db := setupTestDB(t)
	generator := &fakeGenerator{artifactRef: "unused"}
	coordinator := NewCoordinator(db, generator, CoordinatorSettings{})

	seedRequest(t, db, courseModels.AssessmentPass)

	recovered, err := coordinator.RecoverStale(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, recovered)
	assert.Zero(t, generator.calls)
}

func TestExpiryFollowsCourseValidity(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db, &fakeNotifier{})
	generator := &fakeGenerator{artifactRef: "https://certs.example.com/doc/exp.pdf"}
	coordinator := NewCoordinator(db, generator, CoordinatorSettings{})

	course := courseModels.Course{Title: "CPR Level C", Provider: "Assured Response", ValidityYears: 3}
	require.NoError(t, db.Create(&course).Error)

	request := certification.CertificateRequest{
		UserID:           42,
		RecipientName:    "Jordan Blake",
		RecipientEmail:   "jordan@example.com",
		CourseID:         course.ID,
		AssessmentResult: courseModels.AssessmentPass,
		Status:           certification.StatusPending,
		RequestedAt:      time.Now(),
	}
	require.NoError(t, db.Create(&request).Error)

	_, err := engine.Transition(request.ID, certification.StatusApproved, 7, "")
	require.NoError(t, err)

	certificate, err := coordinator.OnApproved(context.Background(), request.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, certificate)
	require.NotNil(t, certificate.ExpiresAt)

	expected := certificate.IssuedAt.AddDate(3, 0, 0)
	assert.WithinDuration(t, expected, *certificate.ExpiresAt, time.Second)
}
