package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

type (
	// EntryID identifies a work entry for its whole lifetime.
	EntryID string

	Status string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Image is an opaque project image attached to an entry.
	Image struct {
		ContentType string `json:"contentType"`
		Data        []byte `json:"data"`
	}

	// NewEntry carries the fields of a work entry before the store assigns an ID.
	NewEntry struct {
		DesignerName string `json:"designerName"`
		WorkTopic    string `json:"workTopic"`
		Date         Date   `json:"date"`
		Company      string `json:"company"`
		Payment      Money  `json:"paymentAmount"`
		Status       Status `json:"status"`
		ProjectImage *Image `json:"projectImage,omitempty"`
	}

	WorkEntry struct {
		ID           EntryID `json:"id"`
		DesignerName string  `json:"designerName"`
		WorkTopic    string  `json:"workTopic"`
		Date         Date    `json:"date"`
		Company      string  `json:"company"`
		Payment      Money   `json:"paymentAmount"`
		Status       Status  `json:"status"`
		ProjectImage *Image  `json:"projectImage,omitempty"`
	}
)

var (
	ErrNotFound     = errors.New("entry not found")
	ErrInvalidEntry = errors.New("invalid entry")

	ErrEmptyDesigner   = errors.New("empty designer name")
	ErrEmptyTopic      = errors.New("empty work topic")
	ErrEmptyCompany    = errors.New("empty company")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativePayment = errors.New("negative payment amount")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrMissingID       = errors.New("missing entry id")
)

// Companies lists the clients offered by the entry form.
var Companies = []string{
	"Hyundai",
	"Mahindra",
	"Mahindra BEV",
	"Audi",
	"Kia",
	"MG",
	"Other",
}

// Statuses returns the closed set of valid statuses.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus normalizes user input ("In Progress", "COMPLETED") to a Status.
func ParseStatus(s string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, " ", "-")
	v = strings.ReplaceAll(v, "_", "-")
	st := Status(v)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day of t, keeping the calendar day seen in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// Key is the day grouping key.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

// MonthKey is the month grouping key.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// Long renders the date as "April 2nd, 2025".
func (d Date) Long() string {
	return fmt.Sprintf("%s %d%s, %d", d.Month().String(), d.Day(), ordinalSuffix(d.Day()), d.Year())
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Key())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativePayment
	}
	return nil
}

// WithID attaches id to the entry fields.
func (n NewEntry) WithID(id EntryID) WorkEntry {
	return WorkEntry{
		ID:           id,
		DesignerName: n.DesignerName,
		WorkTopic:    n.WorkTopic,
		Date:         n.Date,
		Company:      n.Company,
		Payment:      n.Payment,
		Status:       n.Status,
		ProjectImage: n.ProjectImage,
	}
}

// Fields drops the ID, e.g. to validate a row whose ID is not assigned yet.
func (e WorkEntry) Fields() NewEntry {
	return NewEntry{
		DesignerName: e.DesignerName,
		WorkTopic:    e.WorkTopic,
		Date:         e.Date,
		Company:      e.Company,
		Payment:      e.Payment,
		Status:       e.Status,
		ProjectImage: e.ProjectImage,
	}
}

func (n NewEntry) Validate() error {
	return n.WithID("").validateFields()
}

// Validate checks every invariant of a stored entry, including its ID.
func (e WorkEntry) Validate() error {
	if strings.TrimSpace(string(e.ID)) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrMissingID)
	}
	return e.validateFields()
}

func (e WorkEntry) validateFields() error {
	if strings.TrimSpace(e.DesignerName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyDesigner)
	}
	if strings.TrimSpace(e.WorkTopic) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyTopic)
	}
	if strings.TrimSpace(e.Company) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyCompany)
	}
	if err := e.Date.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if err := e.Payment.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrInvalidStatus, e.Status)
	}
	return nil
}

// Clone returns a copy that shares no image bytes with e.
func (e WorkEntry) Clone() WorkEntry {
	if e.ProjectImage != nil {
		img := *e.ProjectImage
		img.Data = append([]byte(nil), e.ProjectImage.Data...)
		e.ProjectImage = &img
	}
	return e
}
