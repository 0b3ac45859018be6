package faa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

// invalidCredentials is the error text the API returns for a bad client id or secret.
const invalidCredentials = "Invalid client id or secret"

// FAA NOTAM API response types. Every envelope field is a pointer so that a
// missing key can be told apart from a zero value.

type envelope struct {
	PageSize   *int               `json:"pageSize"`
	PageNum    *int               `json:"pageNum"`
	TotalCount *int               `json:"totalCount"`
	TotalPages *int               `json:"totalPages"`
	Items      *[]json.RawMessage `json:"items"`
	Error      *string            `json:"error"`
	Message    *string            `json:"message"`
}

type item struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
}

type itemProperties struct {
	CoreNOTAMData *coreNOTAMData `json:"coreNOTAMData"`
}

type coreNOTAMData struct {
	Notam            *wireNotam        `json:"notam"`
	NotamTranslation []wireTranslation `json:"notamTranslation"`
}

type wireNotam struct {
	ID             string `json:"id"`
	Series         string `json:"series"`
	Number         string `json:"number"`
	Type           string `json:"type"`
	Issued         string `json:"issued"`
	SelectionCode  string `json:"selectionCode"`
	MinimumFL      string `json:"minimumFL"`
	MaximumFL      string `json:"maximumFL"`
	Location       string `json:"location"`
	EffectiveStart string `json:"effectiveStart"`
	EffectiveEnd   string `json:"effectiveEnd"`
	Text           string `json:"text"`
	Classification string `json:"classification"`
	AccountID      string `json:"accountId"`
	LastUpdated    string `json:"lastUpdated"`
	ICAOLocation   string `json:"icaoLocation"`
	LowerLimit     string `json:"lowerLimit"`
	UpperLimit     string `json:"upperLimit"`
	Purpose        string `json:"purpose"`
	Scope          string `json:"scope"`
}

type wireTranslation struct {
	Type          string `json:"type"`
	FormattedText string `json:"formattedText"`
	SimpleText    string `json:"simpleText"`
}

// page is one decoded success response.
type page struct {
	PageNum    int
	TotalPages int
	TotalCount int
	Notams     []domain.Notam
}

// decodePage classifies a response body into a success page or one of the
// domain error kinds.
func decodePage(body []byte) (page, error) {
	if !json.Valid(body) {
		return page{}, &domain.PayloadError{
			Kind:    domain.ErrUnexpectedResponseFormat,
			Message: fmt.Sprintf("response is not JSON: %s", truncate(body, 256)),
			Payload: body,
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return page{}, validationError("unrecognised response envelope", body)
	}

	switch {
	case env.isSuccess():
		notams, err := decodeItems(*env.Items, body)
		if err != nil {
			return page{}, err
		}
		return page{
			PageNum:    *env.PageNum,
			TotalPages: *env.TotalPages,
			TotalCount: *env.TotalCount,
			Notams:     notams,
		}, nil

	case env.Error != nil:
		msg := strings.TrimSpace(*env.Error)
		if strings.EqualFold(msg, invalidCredentials) {
			return page{}, &domain.PayloadError{Kind: domain.ErrUnauthenticated, Message: msg, Payload: body}
		}
		return page{}, &domain.PayloadError{Kind: domain.ErrUnexpectedRemote, Message: "error: " + msg, Payload: body}

	case env.Message != nil:
		return page{}, &domain.PayloadError{Kind: domain.ErrUnexpectedRemote, Message: "message: " + *env.Message, Payload: body}

	default:
		return page{}, validationError("unrecognised response envelope", body)
	}
}

func (e envelope) isSuccess() bool {
	return e.PageSize != nil && e.PageNum != nil && e.TotalCount != nil &&
		e.TotalPages != nil && e.Items != nil
}

// decodeItems converts Feature items carrying coreNOTAMData. Other items
// (e.g. bare geometry objects) are skipped.
func decodeItems(raw []json.RawMessage, body []byte) ([]domain.Notam, error) {
	notams := make([]domain.Notam, 0, len(raw))
	for i, r := range raw {
		var it item
		if err := json.Unmarshal(r, &it); err != nil {
			return nil, validationError(fmt.Sprintf("item %d: %v", i, err), body)
		}
		if it.Type != "Feature" || len(it.Properties) == 0 {
			continue
		}

		var props itemProperties
		if err := json.Unmarshal(it.Properties, &props); err != nil {
			return nil, validationError(fmt.Sprintf("item %d: %v", i, err), body)
		}
		if props.CoreNOTAMData == nil || props.CoreNOTAMData.Notam == nil {
			continue
		}

		n, err := props.CoreNOTAMData.toDomain()
		if err != nil {
			return nil, validationError(fmt.Sprintf("item %d: %v", i, err), body)
		}
		notams = append(notams, n)
	}
	return notams, nil
}

func (c *coreNOTAMData) toDomain() (domain.Notam, error) {
	w := c.Notam

	required := []struct{ name, value string }{
		{"id", w.ID},
		{"number", w.Number},
		{"type", w.Type},
		{"issued", w.Issued},
		{"effectiveStart", w.EffectiveStart},
		{"effectiveEnd", w.EffectiveEnd},
		{"location", w.Location},
		{"classification", w.Classification},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return domain.Notam{}, fmt.Errorf("notam %q: missing %s", w.ID, f.name)
		}
	}

	issued, err := parseTime("issued", w.Issued)
	if err != nil {
		return domain.Notam{}, err
	}
	start, err := parseTime("effectiveStart", w.EffectiveStart)
	if err != nil {
		return domain.Notam{}, err
	}
	var updated time.Time
	if w.LastUpdated != "" {
		if updated, err = parseTime("lastUpdated", w.LastUpdated); err != nil {
			return domain.Notam{}, err
		}
	}

	end := domain.ParseEffectiveEnd(w.EffectiveEnd)
	if !end.Indefinite() && end.Time.Before(start) {
		return domain.Notam{}, fmt.Errorf("notam %q: effectiveEnd %s precedes effectiveStart %s",
			w.ID, end, start.Format(time.RFC3339))
	}

	n := domain.Notam{
		ID:             w.ID,
		Number:         w.Number,
		Type:           strings.ToUpper(w.Type),
		Series:         w.Series,
		Issued:         issued,
		EffectiveStart: start,
		EffectiveEnd:   end,
		LastUpdated:    updated,
		SelectionCode:  w.SelectionCode,
		Purpose:        domain.ParseCodeSet(w.Purpose),
		Scope:          domain.ParseCodeSet(w.Scope),
		Classification: w.Classification,
		MinimumFL:      w.MinimumFL,
		MaximumFL:      w.MaximumFL,
		LowerLimit:     w.LowerLimit,
		UpperLimit:     w.UpperLimit,
		Location:       w.Location,
		ICAOLocation:   w.ICAOLocation,
		AccountID:      w.AccountID,
		Text:           w.Text,
	}

	for _, t := range c.NotamTranslation {
		text := t.FormattedText
		if text == "" {
			text = t.SimpleText
		}
		n.Translations = append(n.Translations, domain.Translation{Type: t.Type, Text: text})
	}
	return n, nil
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return t.UTC(), nil
}

func validationError(msg string, body []byte) error {
	return &domain.PayloadError{Kind: domain.ErrValidation, Message: msg, Payload: body}
}

func truncate(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
