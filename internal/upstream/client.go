// Package upstream wraps the college API serving rosters, timetables,
// notices and attendance records. The gateway treats it strictly as a
// data source/sink; every durable record lives on the upstream side.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
)

// Client calls the upstream college API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL. A zero timeout
// defaults to ten seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SubmitRecord is the payload pushed upstream when a student or faculty
// finalizes an attendance mark.
type SubmitRecord struct {
	StudentID string `json:"studentId"`
	Subject   string `json:"subject"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	PhotoURL  string `json:"photoUrl,omitempty"`
}

// ReportSubject is one per-subject attendance aggregate.
type ReportSubject struct {
	Name    string `json:"name"`
	Total   int    `json:"total"`
	Present int    `json:"present"`
}

// ReportHistoryRecord is one past attendance entry.
type ReportHistoryRecord struct {
	Date        string `json:"date"`
	SubjectName string `json:"subjectName"`
	Status      string `json:"status"`
}

// ReportPayload mirrors the upstream aggregate attendance report shape.
type ReportPayload struct {
	Subjects     []ReportSubject       `json:"subjects"`
	WeeklyTrend  []float64             `json:"weeklyTrend"`
	MonthlyTrend []float64             `json:"monthlyTrend"`
	OverallTrend []float64             `json:"overallTrend"`
	History      []ReportHistoryRecord `json:"history"`
}

// Roster fetches the student roster for the faculty dashboard.
func (c *Client) Roster(ctx context.Context, token string) ([]models.Student, error) {
	var out struct {
		Students []models.Student `json:"students"`
	}
	if err := c.get(ctx, token, "/students", nil, &out); err != nil {
		return nil, err
	}
	return out.Students, nil
}

// Timetable fetches the weekly timetable entries.
func (c *Client) Timetable(ctx context.Context, token string) ([]models.TimetableEntry, error) {
	var out struct {
		Timetable []models.TimetableEntry `json:"timetable"`
	}
	if err := c.get(ctx, token, "/timetable", nil, &out); err != nil {
		return nil, err
	}
	return out.Timetable, nil
}

// Notices fetches a page of notices together with the total count.
func (c *Client) Notices(ctx context.Context, token string, page, pageSize int) ([]models.Notice, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("limit", fmt.Sprintf("%d", pageSize))

	var out struct {
		Notices []models.Notice `json:"notices"`
		Total   int             `json:"total"`
	}
	if err := c.get(ctx, token, "/notices", query, &out); err != nil {
		return nil, 0, err
	}
	if out.Total == 0 {
		out.Total = len(out.Notices)
	}
	return out.Notices, out.Total, nil
}

// StudentReport fetches the aggregate attendance report for the caller.
func (c *Client) StudentReport(ctx context.Context, token string) (*ReportPayload, error) {
	var out struct {
		Report ReportPayload `json:"report"`
	}
	if err := c.get(ctx, token, "/attendance/student/report", nil, &out); err != nil {
		return nil, err
	}
	return &out.Report, nil
}

// FacultyHistory fetches per-class attendance history for the faculty view.
func (c *Client) FacultyHistory(ctx context.Context, token string) ([]models.AttendanceRecord, error) {
	var out struct {
		History []models.AttendanceRecord `json:"history"`
	}
	if err := c.get(ctx, token, "/attendance/faculty/history", nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Submit pushes a finalized attendance record upstream.
func (c *Client) Submit(ctx context.Context, token string, record SubmitRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode attendance record")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/attendance/records", bytes.NewReader(body))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build submit request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, token)

	res, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "submit attendance record")
	}
	defer res.Body.Close() //nolint:errcheck
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return c.decodeError(res)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	c.authorize(req, token)

	res, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "upstream request failed")
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode == http.StatusUnauthorized {
		return appErrors.ErrUnauthorized
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return c.decodeError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode upstream response")
	}
	return nil
}

func (c *Client) authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// decodeError surfaces the upstream {message} body to the user.
func (c *Client) decodeError(res *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil || payload.Message == "" {
		return appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("upstream returned status %d", res.StatusCode))
	}
	return appErrors.Clone(appErrors.ErrUpstream, payload.Message)
}
