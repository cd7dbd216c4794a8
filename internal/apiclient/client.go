package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lms-timetable/internal/domain"
	"lms-timetable/internal/timetable"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// StatusError carries the error message the service returned with an
// unexpected status code.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("timetable service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("timetable service returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the timetable service on behalf of one signed-in student.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = DefaultHTTPClient()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// Week fetches the assembled timetable for the week containing anchor.
func (c *Client) Week(ctx context.Context, anchor time.Time) (domain.WeekTimetable, error) {
	query := url.Values{}
	query.Set("week", anchor.Format(timetable.DateLayout))

	var week domain.WeekTimetable
	if err := c.get(ctx, "/api/students/me/timetable", query, &week); err != nil {
		return domain.WeekTimetable{}, err
	}
	return week, nil
}

func (c *Client) Occurrence(ctx context.Context, anchor time.Time, occurrenceID string) (domain.ClassOccurrence, error) {
	query := url.Values{}
	query.Set("week", anchor.Format(timetable.DateLayout))

	var occurrence domain.ClassOccurrence
	if err := c.get(ctx, "/api/students/me/occurrences/"+url.PathEscape(occurrenceID), query, &occurrence); err != nil {
		return domain.ClassOccurrence{}, err
	}
	return occurrence, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
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
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &StatusError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response for %s: %w", path, err)
	}
	return nil
}
