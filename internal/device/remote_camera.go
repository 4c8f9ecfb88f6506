package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/service"
)

// RemoteCamera represents the camera on the student's device, reached
// through the HTTP API rather than local hardware. Opening a stream
// always succeeds; the device then uploads frames which the stream holds
// until captured. A device-side permission refusal is reported by the
// client on the capture call, not at open time.
type RemoteCamera struct{}

// NewRemoteCamera instantiates RemoteCamera.
func NewRemoteCamera() *RemoteCamera {
	return &RemoteCamera{}
}

// Open starts an empty push stream.
func (r *RemoteCamera) Open(ctx context.Context) (service.CameraStream, error) {
	return &PushStream{}, nil
}

// PushStream buffers the most recent frame uploaded by the device.
type PushStream struct {
	mu     sync.Mutex
	frame  []byte
	closed bool
}

// Push replaces the buffered frame.
func (s *PushStream) Push(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.frame = append([]byte(nil), frame...)
}

// Frame returns the latest uploaded frame.
func (s *PushStream) Frame() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("stream closed")
	}
	if len(s.frame) == 0 {
		return nil, fmt.Errorf("no frame received from device")
	}
	return append([]byte(nil), s.frame...), nil
}

// Close releases the buffered frame.
func (s *PushStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frame = nil
	return nil
}
