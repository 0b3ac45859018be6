package domain

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// NOTAM type codes.
const (
	TypeNew     = "N"
	TypeReplace = "R"
	TypeCancel  = "C"
)

// Classification codes published by the FAA NOTAM API.
const (
	ClassInternational = "INTL"
	ClassDomestic      = "DOM"
	ClassFDC           = "FDC"
	ClassMilitary      = "MIL"
	ClassLocalMilitary = "LMIL"
)

// Notam is one hazard notice as returned by the NOTAM source. Records are
// never mutated after parsing.
type Notam struct {
	ID             string        `json:"id"`
	Number         string        `json:"number"`
	Type           string        `json:"type"`
	Series         string        `json:"series,omitempty"`
	Issued         time.Time     `json:"issued"`
	EffectiveStart time.Time     `json:"effective_start"`
	EffectiveEnd   EffectiveEnd  `json:"effective_end"`
	LastUpdated    time.Time     `json:"last_updated"`
	SelectionCode  string        `json:"selection_code,omitempty"`
	Purpose        CodeSet       `json:"purpose,omitempty"`
	Scope          CodeSet       `json:"scope,omitempty"`
	Classification string        `json:"classification"`
	MinimumFL      string        `json:"minimum_fl,omitempty"`
	MaximumFL      string        `json:"maximum_fl,omitempty"`
	LowerLimit     string        `json:"lower_limit,omitempty"`
	UpperLimit     string        `json:"upper_limit,omitempty"`
	Location       string        `json:"location"`
	ICAOLocation   string        `json:"icao_location,omitempty"`
	AccountID      string        `json:"account_id"`
	Text           string        `json:"text"`
	Translations   []Translation `json:"translations,omitempty"`
}

// Translation is an alternative rendering of the NOTAM body.
type Translation struct {
	Type string `json:"type"` // "ICAO" or "LOCAL_FORMAT"
	Text string `json:"text"`
}

// ICAOText returns the ICAO formatted rendering, if present.
func (n Notam) ICAOText() (string, bool) {
	for _, t := range n.Translations {
		if t.Type == "ICAO" {
			return t.Text, true
		}
	}
	return "", false
}

// EffectiveEnd is either a timestamp or an open-ended sentinel such as "PERM".
type EffectiveEnd struct {
	Time time.Time
	Raw  string
}

// Indefinite reports whether the notice has no scheduled end.
func (e EffectiveEnd) Indefinite() bool { return e.Time.IsZero() }

func (e EffectiveEnd) String() string {
	if e.Indefinite() {
		if e.Raw == "" {
			return "PERM"
		}
		return e.Raw
	}
	return e.Time.Format(time.RFC3339)
}

// ParseEffectiveEnd accepts an RFC 3339 timestamp or any non-empty sentinel.
func ParseEffectiveEnd(s string) EffectiveEnd {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return EffectiveEnd{Time: t.UTC(), Raw: s}
	}
	return EffectiveEnd{Raw: s}
}

func (e EffectiveEnd) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *EffectiveEnd) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*e = ParseEffectiveEnd(s)
	return nil
}

// CodeSet is a small set of single-letter category codes (purpose, scope).
// The API encodes it as a run of letters, e.g. "NBO".
type CodeSet []string

// ParseCodeSet splits a code run into a sorted, de-duplicated set.
func ParseCodeSet(s string) CodeSet {
	var set CodeSet
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			continue
		}
		code := string(r)
		if !slices.Contains(set, code) {
			set = append(set, code)
		}
	}
	slices.Sort(set)
	return set
}

// Has reports whether code is in the set.
func (c CodeSet) Has(code string) bool {
	return slices.Contains(c, code)
}

func (c CodeSet) String() string { return strings.Join(c, "") }

func (c CodeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts either a code run ("NBO") or an array (["N","B"]).
func (c *CodeSet) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = ParseCodeSet(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*c = ParseCodeSet(strings.Join(list, ""))
	return nil
}
