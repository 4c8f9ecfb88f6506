package models

// Student is one roster entry on the faculty dashboard. PresentToday is
// reset to false each time the faculty opens a new attendance-taking
// session for a class, never mid-session.
type Student struct {
	ID           string `json:"id"`
	RollNo       string `json:"roll_no"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PresentToday bool   `json:"present_today"`
}

// RosterStats summarises the current marking state of a roster.
type RosterStats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Percent int `json:"percent"`
}
