package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
)

// CameraDevice is the adapter over the physical camera. The device is an
// exclusive resource: at most one stream may be open at a time.
type CameraDevice interface {
	Open(ctx context.Context) (CameraStream, error)
}

// CameraStream is one live camera acquisition.
type CameraStream interface {
	// Frame returns the current frame encoded as an image.
	Frame() ([]byte, error)
	// Close stops the stream tracks and releases the device.
	Close() error
}

// FrameSink is implemented by streams whose frames are uploaded by the
// device instead of read from local hardware.
type FrameSink interface {
	Push(frame []byte)
}

// StreamHandle wraps an open stream with close bookkeeping.
type StreamHandle struct {
	ID string

	mu     sync.Mutex
	stream CameraStream
	closed bool
}

// CaptureService acquires the camera, captures snapshots and guarantees
// the stream is released exactly once on every exit path, including
// abandoned flows.
type CaptureService struct {
	device  CameraDevice
	metrics *MetricsService
	logger  *zap.Logger

	mu   sync.Mutex
	open map[string]*StreamHandle
}

// NewCaptureService instantiates CaptureService.
func NewCaptureService(device CameraDevice, metrics *MetricsService, logger *zap.Logger) *CaptureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureService{
		device:  device,
		metrics: metrics,
		logger:  logger,
		open:    make(map[string]*StreamHandle),
	}
}

// Open requests camera access. A refused or missing camera surfaces as
// CAMERA_DENIED.
func (s *CaptureService) Open(ctx context.Context) (*StreamHandle, error) {
	stream, err := s.device.Open(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCameraDenied.Code, appErrors.ErrCameraDenied.Status, appErrors.ErrCameraDenied.Message)
	}

	handle := &StreamHandle{ID: uuid.NewString(), stream: stream}
	s.mu.Lock()
	s.open[handle.ID] = handle
	s.mu.Unlock()

	s.logger.Debug("camera stream opened", zap.String("handle_id", handle.ID))
	return handle, nil
}

// Snapshot captures the current frame without stopping the stream.
func (s *CaptureService) Snapshot(handle *StreamHandle) ([]byte, error) {
	if handle == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "nil stream handle")
	}
	handle.mu.Lock()
	defer handle.mu.Unlock()
	if handle.closed {
		return nil, appErrors.Clone(appErrors.ErrCameraDenied, "camera stream already released")
	}
	frame, err := handle.stream.Frame()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCameraDenied.Code, appErrors.ErrCameraDenied.Status, "snapshot failed")
	}
	if s.metrics != nil {
		s.metrics.ObserveSnapshot(len(frame))
	}
	return frame, nil
}

// Feed hands a device-uploaded frame to the stream.
func (s *CaptureService) Feed(handle *StreamHandle, frame []byte) error {
	if handle == nil {
		return appErrors.Clone(appErrors.ErrInternal, "nil stream handle")
	}
	handle.mu.Lock()
	defer handle.mu.Unlock()
	if handle.closed {
		return appErrors.Clone(appErrors.ErrCameraDenied, "camera stream already released")
	}
	sink, ok := handle.stream.(FrameSink)
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "device does not accept uploaded frames")
	}
	sink.Push(frame)
	return nil
}

// Close releases the stream. The first call stops the tracks; later
// calls are no-ops so every exit path can close defensively without
// double-releasing the device.
func (s *CaptureService) Close(handle *StreamHandle) error {
	if handle == nil {
		return nil
	}
	handle.mu.Lock()
	if handle.closed {
		handle.mu.Unlock()
		return nil
	}
	handle.closed = true
	stream := handle.stream
	handle.mu.Unlock()

	s.mu.Lock()
	delete(s.open, handle.ID)
	s.mu.Unlock()

	if err := stream.Close(); err != nil {
		s.logger.Warn("camera stream close failed", zap.String("handle_id", handle.ID), zap.Error(err))
		return err
	}
	s.logger.Debug("camera stream released", zap.String("handle_id", handle.ID))
	return nil
}

// OpenCount reports how many streams are currently held. Anything above
// zero after all sessions ended is a leaked handle.
func (s *CaptureService) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}
