package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"sitepalette/internal/palette"
	"sitepalette/internal/stats"
	"sitepalette/internal/store"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	t.Parallel()

	for input, expected := range map[string]string{
		"":       outputFormatJSON,
		"json":   outputFormatJSON,
		" JSON ": outputFormatJSON,
		"table":  outputFormatTable,
	} {
		got, err := validateOutputFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, got, input)
	}

	_, err := validateOutputFormat("xml")
	assert.Error(t, err)
}

func TestWriteJSONKeepsEmptyResultShape(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	reports := []ThemeReport{{
		Source:    "/tmp/missing.png",
		Result:    palette.EmptyResult(),
		SiteStyle: buildSiteStyle(palette.EmptyResult()),
		Error:     "screenshot not found",
	}}
	require.NoError(t, writeJSON(&out, reports))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)

	result := decoded[0]["result"].(map[string]any)
	assert.Nil(t, result["primaryColor"])
	assert.Equal(t, []any{}, result["allColors"])
	assert.Equal(t, []any{}, result["grayscale"])
	assert.Equal(t, "screenshot not found", decoded[0]["error"])
}

func TestRenderReportsTable(t *testing.T) {
	t.Parallel()

	result := palette.EmptyResult()
	result.PrimaryColor = lo.ToPtr("rgb(220,30,30)")
	result.AllColors = []palette.FormattedColor{{Hex: "#dc1e1e", RGB: "rgb(220,30,30)", Area: 0.8}}

	var out bytes.Buffer
	renderReports(&out, []ThemeReport{
		{Source: "/shots/home.png", SourceSize: 2048, Result: result, Cached: true},
		{Source: "/shots/broken.png", Result: palette.EmptyResult(), Error: "decode image"},
	})

	rendered := out.String()
	assert.Contains(t, rendered, "/shots/home.png")
	assert.Contains(t, rendered, "rgb(220,30,30)")
	assert.Contains(t, rendered, "2.0 kB")
	assert.Contains(t, rendered, "decode image")
}

func TestRenderHistoryTable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	result := palette.EmptyResult()
	result.PrimaryColor = lo.ToPtr("rgb(0,0,255)")

	var out bytes.Buffer
	renderHistory(&out, []store.Extraction{{
		ID:          "0b7c1f3e-1111-2222-3333-444455556666",
		SourcePath:  "/shots/blue.png",
		SourceSize:  1500,
		Result:      result,
		Synthesized: 2,
		DurationMS:  42,
		CreatedAt:   now.Add(-2 * time.Hour).Format(time.RFC3339Nano),
	}}, stats.Overview{
		TotalExtractions: 1,
		TopPrimaryColors: []stats.ColorStat{{Color: "rgb(0,0,255)", Count: 1}},
	}, now)

	rendered := out.String()
	assert.Contains(t, rendered, "0b7c1f3e-1111-2222-3333-444455556666")
	assert.Contains(t, rendered, "/shots/blue.png")
	assert.Contains(t, rendered, "2 hours ago")
	assert.Contains(t, rendered, "42ms")
}

func TestValueOrDash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", valueOrDash(nil))
	assert.Equal(t, "-", valueOrDash(lo.ToPtr("")))
	assert.Equal(t, "rgb(1,2,3)", valueOrDash(lo.ToPtr("rgb(1,2,3)")))
}
