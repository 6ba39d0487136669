package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sitepalette/internal/stats"
	"sitepalette/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

const (
	outputFormatJSON  = "json"
	outputFormatTable = "table"
)

func validateOutputFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "", outputFormatJSON:
		return outputFormatJSON, nil
	case outputFormatTable:
		return outputFormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q; use json or table", format)
	}
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func renderReports(out io.Writer, reports []ThemeReport) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Source", "Size", "Primary", "Accent", "Background", "Colors", "Cached", "Error"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for index, report := range reports {
		table.Append([]string{
			strconv.Itoa(index + 1),
			report.Source,
			humanize.Bytes(uint64(max(report.SourceSize, 0))),
			valueOrDash(report.Result.PrimaryColor),
			valueOrDash(report.Result.AccentColor),
			valueOrDash(report.Result.BackgroundColor),
			strconv.Itoa(len(report.Result.AllColors)),
			strconv.FormatBool(report.Cached),
			report.Error,
		})
	}

	table.Render()
}

func renderHistory(out io.Writer, extractions []store.Extraction, overview stats.Overview, now time.Time) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Source", "Size", "Primary", "Colors", "Synthesized", "Duration", "Extracted"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, extraction := range extractions {
		table.Append([]string{
			extraction.ID,
			extraction.SourcePath,
			humanize.Bytes(uint64(max(extraction.SourceSize, 0))),
			valueOrDash(extraction.Result.PrimaryColor),
			strconv.Itoa(len(extraction.Result.AllColors)),
			strconv.Itoa(extraction.Synthesized),
			(time.Duration(extraction.DurationMS) * time.Millisecond).String(),
			relativeTime(extraction.CreatedAt, now),
		})
	}

	table.SetFooter([]string{
		"",
		humanize.Comma(int64(overview.TotalExtractions)) + " extractions",
		humanize.Bytes(uint64(max(overview.TotalBytes, 0))),
		topColor(overview),
		"",
		strconv.Itoa(overview.SynthesizedColors),
		fmt.Sprintf("%.0fms avg", overview.AverageDurationMS),
		"",
	})
	table.Render()
}

func valueOrDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}

func relativeTime(value string, now time.Time) string {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return humanize.RelTime(parsed, now, "ago", "from now")
}

func topColor(overview stats.Overview) string {
	if len(overview.TopPrimaryColors) == 0 {
		return ""
	}
	return overview.TopPrimaryColors[0].Color
}
