package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
)

// Named events carried on the shared real-time channel.
const (
	EventNewNotice            = "newNotice"
	EventNewAttendanceSession = "newAttendanceSession"
	EventAttendanceConfirmed  = "attendanceConfirmed"
	EventStudentJoinedSession = "studentJoinedSession"
)

// Event is one real-time message. Payload fields are flat; which ones are
// set depends on the event name.
type Event struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	SubjectName string `json:"subjectName,omitempty"`
	Status      string `json:"status,omitempty"`
	StudentName string `json:"studentName,omitempty"`
}

// Publisher emits events onto the shared channel.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventSource streams incoming events.
type EventSource interface {
	Events(ctx context.Context) (<-chan Event, error)
}

// RedisBus carries events over one Redis pub/sub channel. It is both the
// publisher half used by the controllers and the source consumed by the
// live listener.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisBus instantiates RedisBus.
func NewRedisBus(client *redis.Client, channel string, logger *zap.Logger) *RedisBus {
	if channel == "" {
		channel = "smartattend:events"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{client: client, channel: channel, logger: logger}
}

// Publish marshals and emits one event.
func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Events subscribes to the channel and streams decoded events until the
// context is cancelled.
func (b *RedisBus) Events(ctx context.Context) (<-chan Event, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe events: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer pubsub.Close() //nolint:errcheck
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("drop malformed event", zap.Error(err))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// LiveService merges real-time events into dashboard state without a
// reload. Merges are local: only notices and attendance aggregates are
// refetched, and in-flight verification sessions are never touched.
type LiveService struct {
	source     EventSource
	dashboards *DashboardService
	logger     *zap.Logger
	now        func() time.Time
}

// NewLiveService instantiates LiveService.
func NewLiveService(source EventSource, dashboards *DashboardService, logger *zap.Logger) *LiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveService{
		source:     source,
		dashboards: dashboards,
		logger:     logger,
		now:        time.Now,
	}
}

// Run consumes events until the context is cancelled.
func (s *LiveService) Run(ctx context.Context) error {
	events, err := s.source.Events(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			s.Dispatch(ctx, event)
		}
	}
}

// Dispatch applies one event to the dashboard state.
func (s *LiveService) Dispatch(ctx context.Context, event Event) {
	switch event.Name {
	case EventNewNotice:
		s.dashboards.Broadcast(fmt.Sprintf("New Notice: %s", event.Title), nil)
		s.dashboards.RefreshNotices(ctx)
	case EventNewAttendanceSession:
		s.dashboards.Broadcast(
			fmt.Sprintf("Attendance session started: %s", event.SubjectName),
			&models.ActivityEntry{
				Time:    s.now().Format("15:04"),
				Message: fmt.Sprintf("Attendance session started for %s", event.SubjectName),
			},
		)
	case EventAttendanceConfirmed:
		s.dashboards.Broadcast(fmt.Sprintf("Attendance marked: %s", event.Status), nil)
		s.dashboards.RefreshAttendance(ctx)
	case EventStudentJoinedSession:
		name := event.StudentName
		if name == "" {
			name = "Student"
		}
		s.dashboards.Broadcast(fmt.Sprintf("%s connected to session", name), nil)
	default:
		s.logger.Debug("ignore unknown event", zap.String("event", event.Name))
	}
}
