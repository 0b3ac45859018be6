package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

func sampleNotam() domain.Notam {
	return domain.Notam{
		ID:             "NOTAM_1_73849",
		Number:         "A0150/24",
		Type:           domain.TypeNew,
		Issued:         time.Date(2024, 2, 24, 10, 0, 0, 0, time.UTC),
		SelectionCode:  "QMRLC",
		Location:       "JFK",
		EffectiveStart: time.Date(2024, 2, 25, 12, 0, 0, 0, time.UTC),
		EffectiveEnd:   domain.ParseEffectiveEnd("PERM"),
		Classification: domain.ClassDomestic,
		AccountID:      "JFK",
		LastUpdated:    time.Date(2024, 2, 24, 10, 5, 0, 0, time.UTC),
		ICAOLocation:   "KJFK",
		Text:           "RWY 04L/22R CLSD\nEXC TAX\nWIP\nLGT OUT\nDAILY 0400-1000",
	}
}

func TestPrint_Fields(t *testing.T) {
	var buf bytes.Buffer
	n := sampleNotam()
	require.NoError(t, Printer{}.Print(&buf, []domain.Notam{n}))

	out := buf.String()
	for _, want := range []string{
		"ID: NOTAM_1_73849\n",
		"Number: A0150/24\n",
		"Type: N\n",
		"Issued: 2024-02-24T10:00:00Z\n",
		"Selection Code: QMRLC\n",
		"Location: JFK\n",
		"Effective Start: 2024-02-25T12:00:00Z\n",
		"Effective End: PERM\n",
		"Classification: DOM\n",
		"Account ID: JFK\n",
		"Last Updated: 2024-02-24T10:05:00Z\n",
		"ICAO Location: KJFK\n",
		fmt.Sprintf("Score: %d\n", domain.Score(n)),
		"DAILY 0400-1000\n",
		separator + "\n",
	} {
		assert.Contains(t, out, want)
	}
}

func TestPrint_TruncatesBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Printer{MaxLines: DefaultMaxLines}.Print(&buf, []domain.Notam{sampleNotam()}))

	out := buf.String()
	assert.Contains(t, out, "Text: RWY 04L/22R CLSD\nEXC TAX\nWIP\n... (2 more lines)\n")
	assert.NotContains(t, out, "LGT OUT")
}

func TestPrint_ShortBodyUntouched(t *testing.T) {
	n := sampleNotam()
	n.Text = "TWY A CLSD\n"

	var buf bytes.Buffer
	require.NoError(t, Printer{MaxLines: 3}.Print(&buf, []domain.Notam{n}))
	assert.Contains(t, buf.String(), "Text: TWY A CLSD\n"+separator)
}

func TestPrint_KeepsOrder(t *testing.T) {
	a, b := sampleNotam(), sampleNotam()
	a.ID, b.ID = "first", "second"

	var buf bytes.Buffer
	require.NoError(t, Printer{}.Print(&buf, []domain.Notam{a, b}))

	out := buf.String()
	assert.Less(t, strings.Index(out, "ID: first"), strings.Index(out, "ID: second"))
	assert.Equal(t, 2, strings.Count(out, separator))
}

func TestPrint_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Printer{}.Print(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestPrintBriefing_Header(t *testing.T) {
	b := domain.Briefing{
		Departure:   domain.Airport{IATACode: "JFK", ICAOCode: "KJFK"},
		Destination: domain.Airport{IATACode: "BOS"},
		Waypoints:   []domain.Coordinate{{Lat: 40.6, Lon: -73.8}, {Lat: 42.4, Lon: -71.0}},
		Notams:      []domain.Notam{sampleNotam()},
	}

	var buf bytes.Buffer
	require.NoError(t, Printer{MaxLines: 1}.PrintBriefing(&buf, b))
	assert.True(t, strings.HasPrefix(buf.String(), "Route KJFK -> BOS: 2 waypoints, 1 NOTAMs\n\n"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestPrint_WriteError(t *testing.T) {
	err := Printer{}.Print(failingWriter{}, []domain.Notam{sampleNotam()})
	assert.EqualError(t, err, "broken pipe")
}
