package models

// ScheduleStatus tracks the attendance state of a single schedule slot.
type ScheduleStatus string

const (
	ScheduleStatusPending ScheduleStatus = "Pending"
	ScheduleStatusPresent ScheduleStatus = "Present"
	ScheduleStatusAbsent  ScheduleStatus = "Absent"
)

// TimetableEntry is one slot of the weekly timetable as delivered by the
// college API. Entries are immutable once loaded; the dashboard rebuilds
// them on every reload.
type TimetableEntry struct {
	Day         string `json:"day"`
	StartTime   string `json:"startTime"`
	SubjectName string `json:"subjectName"`
	Room        string `json:"room"`
}

// WeeklySchedule groups timetable entries by day name (Monday..Saturday).
type WeeklySchedule map[string][]TimetableEntry

// ScheduleItem is a timetable slot projected for a single day, annotated
// with its live attendance status.
type ScheduleItem struct {
	Time    string         `json:"time"`
	Subject string         `json:"subject"`
	Room    string         `json:"room"`
	Status  ScheduleStatus `json:"status"`
}

// DaySchedule is the resolved view of one day: the ordered slots plus the
// indices of the currently running and upcoming classes. Indices are -1
// when no slot qualifies.
type DaySchedule struct {
	DayName     string         `json:"day_name"`
	Items       []ScheduleItem `json:"items"`
	ActiveIndex int            `json:"active_index"`
	NextIndex   int            `json:"next_index"`
	NoClasses   bool           `json:"no_classes"`
}
