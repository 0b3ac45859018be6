// Package render formats NOTAM briefings for a terminal.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

// DefaultMaxLines is the body length shown before truncation.
const DefaultMaxLines = 3

const separator = "----------------------------------------"

// Printer writes NOTAMs one block per record. MaxLines limits the body text;
// zero or less prints it in full.
type Printer struct {
	MaxLines int
}

// Print writes every NOTAM in order, followed by a separator.
func (p Printer) Print(w io.Writer, notams []domain.Notam) error {
	bw := bufio.NewWriter(w)
	for _, n := range notams {
		p.writeNotam(bw, n)
	}
	return bw.Flush()
}

// PrintBriefing writes a route header, then the NOTAMs.
func (p Printer) PrintBriefing(w io.Writer, b domain.Briefing) error {
	if _, err := fmt.Fprintf(w, "Route %s -> %s: %d waypoints, %d NOTAMs\n\n",
		b.Departure.Code(), b.Destination.Code(), len(b.Waypoints), len(b.Notams)); err != nil {
		return err
	}
	return p.Print(w, b.Notams)
}

func (p Printer) writeNotam(w *bufio.Writer, n domain.Notam) {
	field := func(name, value string) {
		fmt.Fprintf(w, "%s: %s\n", name, value)
	}
	field("ID", n.ID)
	field("Number", n.Number)
	field("Type", n.Type)
	field("Issued", formatTime(n.Issued))
	field("Selection Code", n.SelectionCode)
	field("Location", n.Location)
	field("Effective Start", formatTime(n.EffectiveStart))
	field("Effective End", n.EffectiveEnd.String())
	field("Classification", n.Classification)
	field("Account ID", n.AccountID)
	field("Last Updated", formatTime(n.LastUpdated))
	field("ICAO Location", n.ICAOLocation)
	fmt.Fprintf(w, "Score: %d\n", domain.Score(n))
	field("Text", p.truncate(n.Text))
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w)
}

func (p Printer) truncate(text string) string {
	text = strings.TrimRight(text, "\n")
	if p.MaxLines <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= p.MaxLines {
		return text
	}
	return strings.Join(lines[:p.MaxLines], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-p.MaxLines)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
