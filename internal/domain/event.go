package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// RouteRequest asks for a NOTAM briefing between two airports. Zero-valued
// spacing fields fall back to service defaults.
type RouteRequest struct {
	RequestID   string  `json:"request_id"`
	Departure   string  `json:"departure"`
	Destination string  `json:"destination"`
	GapNM       float64 `json:"gap_nm,omitempty"`
	RadiusNM    float64 `json:"radius_nm,omitempty"`
	Filter      Filter  `json:"filter,omitzero"`
}

// Validate checks the fields that do not need a lookup.
func (r RouteRequest) Validate() error {
	if NormalizeAirportCode(r.Departure) == "" {
		return InvalidParameter("departure", r.Departure, "is required")
	}
	if NormalizeAirportCode(r.Destination) == "" {
		return InvalidParameter("destination", r.Destination, "is required")
	}
	if r.GapNM < 0 {
		return InvalidParameter("gap_nm", r.GapNM, "must not be negative")
	}
	if r.RadiusNM < 0 {
		return InvalidParameter("radius_nm", r.RadiusNM, "must not be negative")
	}
	return r.Filter.Validate()
}

// ParseRouteRequest decodes a RawEvent's value into a RouteRequest. A missing
// request ID falls back to the message key.
func ParseRouteRequest(raw RawEvent) (RouteRequest, error) {
	var req RouteRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return RouteRequest{}, fmt.Errorf("parse route request: %w", err)
	}
	if req.RequestID == "" {
		req.RequestID = string(raw.Key)
	}
	return req, nil
}

// Briefing status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Briefing is the prioritised NOTAM list for one route.
type Briefing struct {
	RequestID   string       `json:"request_id"`
	Status      string       `json:"status"`
	Departure   Airport      `json:"departure,omitzero"`
	Destination Airport      `json:"destination,omitzero"`
	Waypoints   []Coordinate `json:"waypoints,omitempty"`
	Notams      []Notam      `json:"notams"`
	Error       string       `json:"error,omitempty"`
	ErrorKind   string       `json:"error_kind,omitempty"`
	Retryable   bool         `json:"retryable,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// FailedBriefing records why a request could not be served.
func FailedBriefing(req RouteRequest, err error) Briefing {
	return Briefing{
		RequestID:   req.RequestID,
		Status:      StatusFailed,
		Notams:      []Notam{},
		Error:       err.Error(),
		ErrorKind:   ErrorKind(err),
		Retryable:   IsRetryable(err),
		GeneratedAt: clock.Now().UTC(),
	}
}
