package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"workboard/internal/core"
)

// maxBodyBytes bounds JSON and form bodies.
const maxBodyBytes = 1 << 20

// RequestBodyParser reads a JSON or form-encoded body once and serves
// string values from either.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body larger than %d bytes", maxBodyBytes)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("invalid JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// First returns the first non-empty value among keys.
func (p *RequestBodyParser) First(keys ...string) string {
	for _, k := range keys {
		if v := p.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseNewEntry builds entry fields from a parsed body. Blank status means
// pending. The result is validated; every failure wraps core.ErrInvalidEntry.
func ParseNewEntry(p *RequestBodyParser) (core.NewEntry, error) {
	n := core.NewEntry{
		DesignerName: p.First("designerName", "designer_name"),
		WorkTopic:    p.First("workTopic", "work_topic"),
		Company:      p.Get("company"),
		Status:       core.StatusPending,
	}

	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return core.NewEntry{}, fmt.Errorf("%w: %w", core.ErrInvalidEntry, err)
	}
	n.Date = date

	amount := p.First("paymentAmount", "payment_amount", "payment")
	cents, err := core.ParseINR(amount)
	if err != nil {
		return core.NewEntry{}, fmt.Errorf("%w: %w: %q", core.ErrInvalidEntry, err, amount)
	}
	n.Payment = core.Money{Cents: cents}

	if s := p.Get("status"); s != "" {
		st, err := core.ParseStatus(s)
		if err != nil {
			return core.NewEntry{}, fmt.Errorf("%w: %w", core.ErrInvalidEntry, err)
		}
		n.Status = st
	}

	if err := n.Validate(); err != nil {
		return core.NewEntry{}, err
	}
	return n, nil
}
