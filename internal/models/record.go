package models

// AttendanceRecord is one history entry. The history list is append-only
// at the front and FIFO-bounded: the oldest entry is evicted first.
type AttendanceRecord struct {
	Date    string         `json:"date"`
	Subject string         `json:"subject"`
	Status  ScheduleStatus `json:"status"`
}

// ActivityEntry is one line of the recent-activity feed.
type ActivityEntry struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

// Notification is one entry of the bell dropdown.
type Notification struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

// SubjectReport aggregates attended vs held classes for one subject.
type SubjectReport struct {
	Name    string `json:"name"`
	Total   int    `json:"total"`
	Present int    `json:"present"`
}

// Percent returns the rounded attendance percentage for the subject.
func (r SubjectReport) Percent() int {
	if r.Total <= 0 {
		return 0
	}
	return int(float64(r.Present)/float64(r.Total)*100 + 0.5)
}

// ReportPeriod selects the aggregation window of an attendance report.
type ReportPeriod string

const (
	ReportWeekly  ReportPeriod = "weekly"
	ReportMonthly ReportPeriod = "monthly"
	ReportOverall ReportPeriod = "overall"
)

// AttendanceReport is the aggregate view rendered by the reports tab:
// a labelled trend line plus per-subject totals.
type AttendanceReport struct {
	Labels   []string        `json:"labels"`
	Trend    []float64       `json:"trend"`
	Subjects []SubjectReport `json:"subjects"`
}
