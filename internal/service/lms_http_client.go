package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/timetable"
)

// LMSHTTPClient reads the slot catalog and weekly occurrences from the LMS
// REST API and normalizes its DTOs into the domain shapes.
type LMSHTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewLMSHTTPClient(baseURL, token string, httpClient *http.Client) *LMSHTTPClient {
	return &LMSHTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

func DefaultLMSHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// flexString accepts JSON strings, numbers and null. The LMS sends ids as
// numbers on some endpoints and as strings on others.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*f = ""
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*f = flexString(n.String())
		return nil
	}
}

type lmsTimeSlot struct {
	ID        flexString `json:"id"`
	Name      string     `json:"name"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
}

type lmsOccurrence struct {
	DayOfWeek     string     `json:"dayOfWeek"`
	Date          string     `json:"date"`
	TimeSlotID    flexString `json:"timeSlotId"`
	TimeSlotName  string     `json:"timeSlotName"`
	StartTime     string     `json:"startTime"`
	EndTime       string     `json:"endTime"`
	CourseCode    string     `json:"courseCode"`
	SubjectName   string     `json:"subjectName"`
	TeacherName   string     `json:"teacherName"`
	ClassID       flexString `json:"classId"`
	SlotID        flexString `json:"slotId"`
	IsPresent     *bool      `json:"isPresent"`
	HasAttendance *bool      `json:"hasAttendance"`
	Location      string     `json:"location"`
	Note          string     `json:"note"`
}

func (c *LMSHTTPClient) ListTimeSlots(ctx context.Context) ([]domain.TimeSlotDefinition, error) {
	var body []lmsTimeSlot
	if err := c.get(ctx, "/time-slots", nil, &body); err != nil {
		return nil, err
	}

	slots := make([]domain.TimeSlotDefinition, 0, len(body))
	for _, slot := range body {
		slots = append(slots, domain.TimeSlotDefinition{
			ID:        string(slot.ID),
			Label:     slot.Name,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	return slots, nil
}

func (c *LMSHTTPClient) ListWeekOccurrences(ctx context.Context, studentID uuid.UUID, weekStart time.Time) (domain.WeeklyOccurrences, error) {
	if studentID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	query := url.Values{}
	query.Set("weekStart", weekStart.Format(timetable.DateLayout))

	var body map[string][]lmsOccurrence
	if err := c.get(ctx, "/students/"+studentID.String()+"/timetable", query, &body); err != nil {
		return nil, err
	}

	week := make(domain.WeeklyOccurrences, len(body))
	for day, items := range body {
		bucket := domain.DayBucket{Day: day}
		if canonical, ok := domain.CanonicalDay(day); ok {
			if date, ok := timetable.DayDate(weekStart, canonical); ok {
				bucket.Date = date.Format(timetable.DateLayout)
			}
		}
		bucket.Occurrences = make([]domain.ClassOccurrence, 0, len(items))
		for _, item := range items {
			bucket.Occurrences = append(bucket.Occurrences, item.toDomain())
		}
		week[day] = bucket
	}
	return week, nil
}

func (o lmsOccurrence) toDomain() domain.ClassOccurrence {
	location := o.Location
	if strings.TrimSpace(location) == "" {
		location = o.Note
	}
	hasAttendance := o.HasAttendance != nil && *o.HasAttendance
	return domain.ClassOccurrence{
		OccurrenceID:   string(o.SlotID),
		ClassID:        string(o.ClassID),
		DayOfWeek:      o.DayOfWeek,
		Date:           o.Date,
		TimeSlotID:     string(o.TimeSlotID),
		TimeSlotLabel:  o.TimeSlotName,
		StartTime:      o.StartTime,
		EndTime:        o.EndTime,
		CourseCode:     o.CourseCode,
		CourseName:     o.SubjectName,
		InstructorName: o.TeacherName,
		LocationOrNote: location,
		Attendance:     domain.DeriveAttendance(o.IsPresent, hasAttendance),
	}
}

func (c *LMSHTTPClient) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.baseURL == "" {
		return ErrInvalidInput
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("lms unexpected status for %s: %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode lms response for %s: %w", path, err)
	}
	return nil
}
