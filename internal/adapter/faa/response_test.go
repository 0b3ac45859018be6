package faa

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

func TestDecodePage_Success(t *testing.T) {
	body := pageBody(t, 1, 1, notamItem("NOTAM_1_73849637", "A2157/24"), geometryItem())

	pg, err := decodePage(body)
	require.NoError(t, err)
	assert.Equal(t, 1, pg.PageNum)
	assert.Equal(t, 1, pg.TotalPages)
	require.Len(t, pg.Notams, 1)

	n := pg.Notams[0]
	assert.Equal(t, "NOTAM_1_73849637", n.ID)
	assert.Equal(t, "A2157/24", n.Number)
	assert.Equal(t, domain.TypeNew, n.Type)
	assert.Equal(t, "A", n.Series)
	assert.Equal(t, time.Date(2024, 10, 2, 19, 54, 0, 0, time.UTC), n.Issued)
	assert.Equal(t, time.Date(2024, 10, 2, 19, 50, 0, 0, time.UTC), n.EffectiveStart)
	assert.Equal(t, time.Date(2024, 10, 14, 22, 0, 0, 0, time.UTC), n.EffectiveEnd.Time)
	assert.Equal(t, "QCBLS", n.SelectionCode)
	assert.Equal(t, domain.CodeSet{"B", "N", "O"}, n.Purpose)
	assert.Equal(t, domain.CodeSet{"A", "E"}, n.Scope)
	assert.Equal(t, domain.ClassInternational, n.Classification)
	assert.Equal(t, "000", n.MinimumFL)
	assert.Equal(t, "040", n.MaximumFL)
	assert.Equal(t, "SFC", n.LowerLimit)
	assert.Equal(t, "3999FT.", n.UpperLimit)
	assert.Equal(t, "ZJX", n.Location)
	assert.Equal(t, "KZJX", n.ICAOLocation)
	assert.Equal(t, "KZJX", n.AccountID)

	icao, ok := n.ICAOText()
	require.True(t, ok)
	assert.Contains(t, icao, "A2157/24 NOTAMN")
	require.Len(t, n.Translations, 2)
	assert.Equal(t, "!ZJX ADS-B", n.Translations[1].Text)
}

func TestDecodePage_EmptyItems(t *testing.T) {
	pg, err := decodePage(pageBody(t, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, pg.Notams)
}

func TestDecodePage_IndefiniteEnd(t *testing.T) {
	item := notamField(notamItem("1", "A0001/24"), "effectiveEnd", "PERM")

	pg, err := decodePage(pageBody(t, 1, 1, item))
	require.NoError(t, err)
	require.Len(t, pg.Notams, 1)
	assert.True(t, pg.Notams[0].EffectiveEnd.Indefinite())
	assert.Equal(t, "PERM", pg.Notams[0].EffectiveEnd.String())
}

func TestDecodePage_Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"invalid credentials", `{"error":"Invalid client id or secret"}`, domain.ErrUnauthenticated},
		{"invalid credentials any case", `{"error":"  invalid CLIENT id or secret "}`, domain.ErrUnauthenticated},
		{"other error", `{"error":"Internal failure"}`, domain.ErrUnexpectedRemote},
		{"message", `{"message":"Service unavailable"}`, domain.ErrUnexpectedRemote},
		{"unknown object", `{"status":"ok"}`, domain.ErrValidation},
		{"partial success", `{"pageSize":10,"pageNum":1,"items":[]}`, domain.ErrValidation},
		{"array", `[1,2,3]`, domain.ErrValidation},
		{"null", `null`, domain.ErrValidation},
		{"not JSON", `<html>Bad Gateway</html>`, domain.ErrUnexpectedResponseFormat},
		{"empty", ``, domain.ErrUnexpectedResponseFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodePage([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var perr *domain.PayloadError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.body, string(perr.Payload))
		})
	}
}

func TestDecodePage_MalformedNotam(t *testing.T) {
	tests := []struct {
		name  string
		item  map[string]any
		match string
	}{
		{"missing id", notamField(notamItem("1", "A0001/24"), "id", ""), "missing id"},
		{"bad issued", notamField(notamItem("1", "A0001/24"), "issued", "yesterday"), "issued"},
		{"bad start", notamField(notamItem("1", "A0001/24"), "effectiveStart", "2024-13-45"), "effectiveStart"},
		{"wrong field type", notamField(notamItem("1", "A0001/24"), "number", 42), "item 0"},
		{"end before start", notamField(notamItem("1", "A0001/24"), "effectiveEnd", "2024-10-01T00:00:00Z"), "precedes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodePage(pageBody(t, 1, 1, tt.item))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			assert.Contains(t, err.Error(), tt.match)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate([]byte("  abc\n"), 10))
	assert.Equal(t, "ab...", truncate([]byte("abcdef"), 2))
}
