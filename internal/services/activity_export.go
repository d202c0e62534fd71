package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/tooldeck/backend/internal/models"
)

// utf8BOM makes spreadsheet tools decode the file as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var exportBaseColumns = []string{
	"Date", "Time", "Timestamp",
	"Action", "Description",
	"Target Name", "Target Type", "Target ID",
	"Performer Name", "Performer Role", "Performer ID",
	"Reason",
	"IP Address", "User Agent", "Session ID",
}

// BuildActivityCSV serializes a reconciled feed to a flat table. Returns nil
// for an empty feed: no file is produced rather than a malformed empty one.
func BuildActivityCSV(entries []models.ActivityView) []byte {
	if len(entries) == 0 {
		return nil
	}

	maxChanges := 0
	for _, e := range entries {
		if len(e.Changes) > maxChanges {
			maxChanges = len(e.Changes)
		}
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)

	header := make([]string, 0, len(exportBaseColumns)+maxChanges*3+1)
	header = append(header, exportBaseColumns...)
	for i := 1; i <= maxChanges; i++ {
		header = append(header,
			fmt.Sprintf("Change %d Field", i),
			fmt.Sprintf("Change %d Old Value", i),
			fmt.Sprintf("Change %d New Value", i),
		)
	}
	header = append(header, "Changes Summary")
	writeCSVRow(&buf, header)

	for _, e := range entries {
		row := make([]string, 0, len(header))
		row = append(row,
			e.Timestamp.Format("2006-01-02"),
			e.Timestamp.Format("15:04:05"),
			e.Timestamp.Format(time.RFC3339),
			e.Action,
			e.Summary.Description,
			e.Target.Name,
			e.TargetType,
			e.Target.ID.String(),
			e.Performer.Name,
			e.Performer.Role,
			e.Performer.ID.String(),
			e.Reason,
			e.Metadata.IPAddress,
			e.Metadata.UserAgent,
			e.Metadata.SessionID,
		)

		var summaries []string
		for i := 0; i < maxChanges; i++ {
			if i < len(e.Changes) {
				c := e.Changes[i]
				oldVal := stringifyValue(c.OldValue)
				newVal := stringifyValue(c.NewValue)
				row = append(row, c.Field, oldVal, newVal)
				summaries = append(summaries, fmt.Sprintf("%s: %s -> %s", c.Field, oldVal, newVal))
			} else {
				row = append(row, "", "", "")
			}
		}
		row = append(row, strings.Join(summaries, "; "))
		writeCSVRow(&buf, row)
	}

	return buf.Bytes()
}

func writeCSVRow(buf *bytes.Buffer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(escapeCSVCell(cell))
	}
	buf.WriteString("\r\n")
}

// escapeCSVCell quote-wraps a cell and doubles internal quotes if and only
// if the cell contains a comma, a quote, or a line break. Anything else is
// emitted bare.
func escapeCSVCell(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n\r") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// ExportFilename derives the deterministic download name. The window suffix
// appears only for non-default windows; "all" maps to "_all".
func ExportFilename(base string, date time.Time, actionFilter, window string) string {
	name := base + "_" + date.Format("2006-01-02")
	if actionFilter != "" && models.KnownActions[actionFilter] {
		name += "_" + actionFilter
	}
	switch {
	case window == "all":
		name += "_all"
	case window != "":
		name += "_" + window + "d"
	}
	return name + ".csv"
}
