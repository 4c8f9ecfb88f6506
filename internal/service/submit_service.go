package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/upstream"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/jobs"
)

// submitClient is the slice of the upstream client the dispatcher needs.
type submitClient interface {
	Submit(ctx context.Context, token string, record upstream.SubmitRecord) error
}

type submitPayload struct {
	token  string
	record upstream.SubmitRecord
}

// SubmitService pushes finalized attendance records to the upstream API
// in the background. The local mark is optimistic: a failed remote commit
// is logged and dropped, never rolled back.
type SubmitService struct {
	client submitClient
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewSubmitService instantiates SubmitService.
func NewSubmitService(client submitClient, cfg config.SubmitConfig, logger *zap.Logger) *SubmitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SubmitService{client: client, logger: logger}
	s.queue = jobs.NewQueue("attendance-submit", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the dispatch workers.
func (s *SubmitService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *SubmitService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules one record for delivery. Fire-and-forget: enqueue
// failures are logged, the caller's state is already final.
func (s *SubmitService) Enqueue(token string, record upstream.SubmitRecord) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "submit",
		Payload: submitPayload{token: token, record: record},
	})
	if err != nil {
		s.logger.Warn("submit enqueue failed",
			zap.String("subject", record.Subject),
			zap.Error(err))
	}
}

func (s *SubmitService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(submitPayload)
	if !ok {
		s.logger.Error("submit job with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := s.client.Submit(ctx, payload.token, payload.record); err != nil {
		// Known gap: the local Present mark stays even when the remote
		// commit fails. Surface it in the logs for reconciliation.
		s.logger.Error("remote attendance commit failed",
			zap.String("subject", payload.record.Subject),
			zap.String("student_id", payload.record.StudentID),
			zap.Error(err))
		return err
	}
	return nil
}
