package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/upstream"
	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/storage"
)

// StartSessionRequest opens a verification session for one class.
type StartSessionRequest struct {
	Subject string `json:"subject" validate:"required"`
}

// sessionRecord pairs the session with its transient resources.
type sessionRecord struct {
	session models.VerificationSession
	handle  *StreamHandle
	token   string
}

// SessionService runs the student check-in state machine: location check,
// live capture, submit. Stages execute strictly in that order, one
// session per student at a time, and every failure is terminal for the
// attempt; the only recovery is an explicit user action.
type SessionService struct {
	geofence   *GeofenceService
	capture    *CaptureService
	photos     *storage.LocalStorage
	signer     *storage.SignedURLSigner
	dashboards *DashboardService
	submits    *SubmitService
	publisher  Publisher
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time

	mu        sync.Mutex
	byID      map[string]*sessionRecord
	byStudent map[string]string
}

// NewSessionService instantiates SessionService.
func NewSessionService(
	geofence *GeofenceService,
	capture *CaptureService,
	photos *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	dashboards *DashboardService,
	submits *SubmitService,
	publisher Publisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		geofence:   geofence,
		capture:    capture,
		photos:     photos,
		signer:     signer,
		dashboards: dashboards,
		submits:    submits,
		publisher:  publisher,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
		byID:       make(map[string]*sessionRecord),
		byStudent:  make(map[string]string),
	}
}

// Start opens a new verification session in the location-check stage.
// A student with an in-progress session must cancel or finish it first;
// a session parked failed after a location rejection is discarded and
// replaced.
func (s *SessionService) Start(ctx context.Context, studentID, token string, req StartSessionRequest) (*models.VerificationSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.byStudent[studentID]; ok {
		if record, ok := s.byID[existingID]; ok {
			// The only terminal stage that stays registered is a
			// location failure awaiting retry. A new start supersedes
			// it; anything else blocks.
			if !record.session.Stage.Terminal() {
				return nil, appErrors.ErrSessionActive
			}
			s.destroyLocked(record)
			s.observeSession(models.StageCancelled)
		}
	}

	now := s.now()
	record := &sessionRecord{
		session: models.VerificationSession{
			ID:        uuid.NewString(),
			StudentID: studentID,
			Subject:   req.Subject,
			Stage:     models.StageLocationCheck,
			StartedAt: now,
			UpdatedAt: now,
		},
		token: token,
	}
	s.byID[record.session.ID] = record
	s.byStudent[studentID] = record.session.ID

	s.logger.Info("verification session started",
		zap.String("session_id", record.session.ID),
		zap.String("subject", req.Subject))

	out := record.session
	return &out, nil
}

// VerifyLocation runs the geofence gate for the session. On success the
// camera stream opens and the session advances to capture. A rejected
// reading parks the session in the failed stage; Retry re-arms it. A
// camera refusal destroys the session outright.
func (s *SessionService) VerifyLocation(ctx context.Context, studentID, sessionID string, reading models.LocationReading) (*models.VerificationSession, models.GeofenceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookupLocked(studentID, sessionID)
	if err != nil {
		return nil, models.GeofenceResult{}, err
	}
	if record.session.Stage != models.StageLocationCheck {
		return nil, models.GeofenceResult{}, appErrors.ErrSessionStage
	}

	result := s.geofence.Verify(reading)
	record.session.Distance = result.Distance
	record.session.UpdatedAt = s.now()

	if !result.OK {
		verr := ResultError(result)
		record.session.Stage = models.StageFailed
		record.session.ErrorMessage = appErrors.FromError(verr).Message
		out := record.session
		return &out, result, verr
	}

	handle, err := s.capture.Open(ctx)
	if err != nil {
		record.session.Stage = models.StageFailed
		record.session.ErrorMessage = appErrors.FromError(err).Message
		out := record.session
		s.destroyLocked(record)
		s.observeSession(models.StageFailed)
		return &out, result, err
	}

	record.handle = handle
	record.session.Stage = models.StageCameraCapture
	out := record.session
	return &out, result, nil
}

// Retry re-enters the location check after a location failure. Sessions
// that failed past the location stage cannot be re-armed.
func (s *SessionService) Retry(studentID, sessionID string) (*models.VerificationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookupLocked(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if record.session.Stage != models.StageFailed || record.handle != nil {
		return nil, appErrors.ErrSessionStage
	}

	record.session.Stage = models.StageLocationCheck
	record.session.ErrorMessage = ""
	record.session.Distance = 0
	record.session.UpdatedAt = s.now()
	out := record.session
	return &out, nil
}

// FeedFrame forwards a device-uploaded frame to the session's stream.
func (s *SessionService) FeedFrame(studentID, sessionID string, frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookupLocked(studentID, sessionID)
	if err != nil {
		return err
	}
	if record.session.Stage != models.StageCameraCapture && record.session.Stage != models.StageReadyToSubmit {
		return appErrors.ErrSessionStage
	}
	return s.capture.Feed(record.handle, frame)
}

// FailCamera records a device-side camera refusal reported after the
// location check. The session is destroyed, matching an open failure.
func (s *SessionService) FailCamera(studentID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookupLocked(studentID, sessionID)
	if err != nil {
		return err
	}
	if record.session.Stage != models.StageCameraCapture {
		return appErrors.ErrSessionStage
	}
	s.failLocked(record, appErrors.ErrCameraDenied)
	return appErrors.ErrCameraDenied
}

// Snapshot captures the current frame, persists it and enables submit.
// The stream keeps running so the user can retake before submitting.
func (s *SessionService) Snapshot(ctx context.Context, studentID, sessionID string) (*models.VerificationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookupLocked(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if record.session.Stage != models.StageCameraCapture && record.session.Stage != models.StageReadyToSubmit {
		return nil, appErrors.ErrSessionStage
	}

	frame, err := s.capture.Snapshot(record.handle)
	if err != nil {
		s.failLocked(record, err)
		out := record.session
		return &out, err
	}

	filename := fmt.Sprintf("%s/%s.png", s.now().Format("2006-01-02"), record.session.ID)
	if _, serr := s.photos.Save(filename, frame); serr != nil {
		s.failLocked(record, serr)
		out := record.session
		return &out, appErrors.Wrap(serr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store snapshot")
	}
	record.session.PhotoPath = filename
	if s.signer != nil {
		if token, _, serr := s.signer.Generate(record.session.ID, filename); serr == nil {
			record.session.PhotoURL = "/api/photos?token=" + token
		}
	}

	record.session.Stage = models.StageReadyToSubmit
	record.session.UpdatedAt = s.now()
	out := record.session
	return &out, nil
}

// Submit finalizes the attempt: the camera is released, the schedule slot
// flips to Present, the mark lands in history/activity/notifications, the
// record is queued for the upstream commit and the confirmation event is
// published. The session is destroyed on return.
func (s *SessionService) Submit(ctx context.Context, studentID, sessionID string) (*models.VerificationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookupLocked(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	if record.session.Stage != models.StageReadyToSubmit {
		return nil, appErrors.ErrSessionStage
	}

	if cerr := s.capture.Close(record.handle); cerr != nil {
		s.logger.Warn("camera release failed on submit", zap.String("session_id", sessionID), zap.Error(cerr))
	}
	record.handle = nil

	now := s.now()
	state := s.dashboards.StudentStateFor(studentID)
	state.MarkPresent(record.session.Subject, now)

	if s.submits != nil {
		s.submits.Enqueue(record.token, upstream.SubmitRecord{
			StudentID: studentID,
			Subject:   record.session.Subject,
			Date:      now.Format("2006-01-02"),
			Status:    string(models.ScheduleStatusPresent),
			PhotoURL:  record.session.PhotoURL,
		})
	}

	if s.publisher != nil {
		event := Event{
			Name:        EventAttendanceConfirmed,
			SubjectName: record.session.Subject,
			Status:      string(models.ScheduleStatusPresent),
		}
		if perr := s.publisher.Publish(ctx, event); perr != nil {
			s.logger.Warn("confirmation publish failed", zap.Error(perr))
		}
	}

	record.session.Stage = models.StageSubmitted
	record.session.UpdatedAt = now
	out := record.session
	s.destroyLocked(record)
	s.observeSession(models.StageSubmitted)

	s.logger.Info("attendance submitted",
		zap.String("session_id", sessionID),
		zap.String("subject", out.Subject))
	return &out, nil
}

// Cancel abandons a registered session from any stage, including one
// parked failed after a location rejection. The camera is released
// synchronously before the session is discarded.
func (s *SessionService) Cancel(studentID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookupLocked(studentID, sessionID)
	if err != nil {
		return err
	}

	if record.handle != nil {
		if cerr := s.capture.Close(record.handle); cerr != nil {
			s.logger.Warn("camera release failed on cancel", zap.String("session_id", sessionID), zap.Error(cerr))
		}
		record.handle = nil
	}
	record.session.Stage = models.StageCancelled
	s.destroyLocked(record)
	s.observeSession(models.StageCancelled)
	return nil
}

// Get returns a snapshot of the session.
func (s *SessionService) Get(studentID, sessionID string) (*models.VerificationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.lookupLocked(studentID, sessionID)
	if err != nil {
		return nil, err
	}
	out := record.session
	return &out, nil
}

// ActiveCount reports how many sessions are currently held.
func (s *SessionService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *SessionService) lookupLocked(studentID, sessionID string) (*sessionRecord, error) {
	record, ok := s.byID[sessionID]
	if !ok || record.session.StudentID != studentID {
		return nil, appErrors.ErrSessionNotFound
	}
	return record, nil
}

// failLocked parks the session in the failed stage, releases the camera
// and destroys the session. Camera-stage failures have no retry path.
func (s *SessionService) failLocked(record *sessionRecord, cause error) {
	if record.handle != nil {
		if cerr := s.capture.Close(record.handle); cerr != nil {
			s.logger.Warn("camera release failed", zap.String("session_id", record.session.ID), zap.Error(cerr))
		}
		record.handle = nil
	}
	record.session.Stage = models.StageFailed
	record.session.ErrorMessage = appErrors.FromError(cause).Message
	record.session.UpdatedAt = s.now()
	s.destroyLocked(record)
	s.observeSession(models.StageFailed)
}

func (s *SessionService) destroyLocked(record *sessionRecord) {
	delete(s.byID, record.session.ID)
	if current, ok := s.byStudent[record.session.StudentID]; ok && current == record.session.ID {
		delete(s.byStudent, record.session.StudentID)
	}
}

func (s *SessionService) observeSession(stage models.SessionStage) {
	if s.metrics != nil {
		s.metrics.ObserveSession(stage)
	}
}
