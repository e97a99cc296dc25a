// Package csvtable turns the raw planner CSV files into fixed-schema string
// tables. The files round-trip through spreadsheets and older app revisions,
// so parsing is deliberately forgiving: missing columns get defaults, numeric
// garbage coerces to defaults, literal "nan" artifacts are blanked out.
// Reconciling an already-clean table is a no-op.
package csvtable

import (
	"encoding/csv"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Decode parses text into rows following the given column schema, in file
// order. The header row decides which file column feeds which schema column;
// schema columns absent from the file come back empty. Unparseable input
// yields an empty table - a valid starting state, never an error.
func Decode(text string, columns []string) [][]string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		log.Errorf("csvtable: failed to parse table, substituting empty: %s", err)
		return nil
	}
	if len(records) < 2 {
		// header only, or nothing
		return nil
	}

	header := records[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]string, len(columns))
		for i, col := range columns {
			idx, ok := colIndex[col]
			if !ok || idx >= len(record) {
				continue
			}
			row[i] = cleanCell(record[idx])
		}
		rows = append(rows, row)
	}

	return rows
}

// Encode renders the canonical CSV form: header row plus all rows, each
// padded or truncated to the schema width.
func Encode(columns []string, rows [][]string) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	// csv.Writer errors only propagate through Flush; the underlying
	// strings.Builder cannot fail, so these are effectively infallible
	_ = writer.Write(columns)
	for _, row := range rows {
		record := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				record[i] = cleanCell(row[i])
			}
		}
		_ = writer.Write(record)
	}
	writer.Flush()

	return sb.String()
}

// Float coerces leniently, unparseable values default to 0.
func Float(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Int coerces leniently, unparseable values get the given default.
func Int(s string, def int) int {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	// "3.0" style artifacts from spreadsheet round-trips
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

// Bool01 reads the 0/1 flags the log table stores.
func Bool01(s string) bool {
	return Int(s, 0) != 0
}

// FormatFloat renders weights the way the files historically store them:
// whole numbers keep a ".0" suffix.
func FormatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func FormatBool01(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// empty numeric cells come back as literal "nan" after pandas round-trips
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if s == "nan" || s == "NaN" {
		return ""
	}
	return s
}
