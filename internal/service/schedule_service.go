package service

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
)

// ScheduleService resolves the weekly timetable into the day view both
// dashboards render: today's slot list with the ongoing and upcoming
// classes marked.
type ScheduleService struct {
	classDuration time.Duration
	restDay       string
	fallbackDay   string
	logger        *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(cfg config.ScheduleConfig, logger *zap.Logger) *ScheduleService {
	if cfg.ClassDuration <= 0 {
		cfg.ClassDuration = time.Hour
	}
	if cfg.RestDay == "" {
		cfg.RestDay = "Sunday"
	}
	if cfg.FallbackDay == "" {
		cfg.FallbackDay = "Monday"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		classDuration: cfg.ClassDuration,
		restDay:       cfg.RestDay,
		fallbackDay:   cfg.FallbackDay,
		logger:        logger,
	}
}

// DayFor maps the current time to the timetable day, substituting the
// fallback day on the rest day so a schedule is always shown.
func (s *ScheduleService) DayFor(now time.Time) string {
	day := now.Weekday().String()
	if day == s.restDay {
		return s.fallbackDay
	}
	return day
}

// ResolveToday builds today's schedule from the weekly timetable. All
// items start Pending; Annotate marks active and next.
func (s *ScheduleService) ResolveToday(weekly models.WeeklySchedule, now time.Time) models.DaySchedule {
	dayName := s.DayFor(now)
	entries := weekly[dayName]

	items := make([]models.ScheduleItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, models.ScheduleItem{
			Time:    entry.StartTime,
			Subject: entry.SubjectName,
			Room:    entry.Room,
			Status:  models.ScheduleStatusPending,
		})
	}

	day := models.DaySchedule{
		DayName:   dayName,
		Items:     items,
		NoClasses: len(items) == 0,
	}
	day.ActiveIndex, day.NextIndex = s.Annotate(items, now)
	return day
}

// Annotate returns the active and next indices for a slot list at the
// given time, or -1 when no slot qualifies. A slot is active while the
// class duration window since its start has not elapsed; next is the
// first slot strictly after now in list order.
func (s *ScheduleService) Annotate(items []models.ScheduleItem, now time.Time) (activeIndex, nextIndex int) {
	activeIndex, nextIndex = -1, -1
	nowMinutes := now.Hour()*60 + now.Minute()
	windowMinutes := int(s.classDuration.Minutes())

	for idx, item := range items {
		itemMinutes := minuteOfDay(item.Time)
		if itemMinutes <= nowMinutes && nowMinutes-itemMinutes < windowMinutes {
			activeIndex = idx
		}
		if itemMinutes > nowMinutes && nextIndex == -1 {
			nextIndex = idx
		}
	}
	return activeIndex, nextIndex
}

// minuteOfDay converts "HH:MM" to minutes since midnight. Malformed
// components read as zero.
func minuteOfDay(raw string) int {
	parts := strings.SplitN(raw, ":", 2)
	hh := 0
	mm := 0
	if len(parts) > 0 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			hh = v
		}
	}
	if len(parts) > 1 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			mm = v
		}
	}
	return hh*60 + mm
}
