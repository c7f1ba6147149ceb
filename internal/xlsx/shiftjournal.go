package xlsx

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"mill-data/internal/domain"
)

// Shift-journal sheet layout. Each data sheet is named "D.M.Yсм<shift>";
// the hourly productivity table and the throughput cell sit at fixed
// positions, the downtime section is located by its marker row.
const (
	throughputRow = 1
	throughputCol = 7

	hourlyFirstRow = 4
	hourlyLastRow  = 16
	hourLabelCol   = 0
	millFirstCol   = 1
	millCount      = 5

	downtimeEquipCol   = 0
	downtimeFromCol    = 1
	downtimeToCol      = 2
	downtimeMinutesCol = 3
	downtimeReasonCol  = 4
)

const (
	downtimeMarker     = "Простой мельниц"
	averageRowLabel    = "среднее"
	sectionEndRemnant  = "Остаток"
	sectionEndLoading  = "Загрузка"
	equipmentRowPrefix = "№"
)

var hoursTextRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*час`)

// ShiftJournalResult carries the three independent record streams extracted
// from one shift-journal workbook.
type ShiftJournalResult struct {
	Productivity []domain.ProductivityRecord
	Throughput   []domain.MillThroughputRecord
	Downtime     []domain.ShiftDowntimeRecord
	Warnings     []Warning
}

// Rows returns the total record count across the three streams.
func (r *ShiftJournalResult) Rows() int {
	return len(r.Productivity) + len(r.Throughput) + len(r.Downtime)
}

// ParseShiftJournal extracts hourly productivity, per-shift throughput and
// shift downtime records from a shift-journal workbook. Sheets whose names
// do not match the "D.M.Yсм<shift>" convention are auxiliary sheets and are
// ignored without a warning.
func ParseShiftJournal(data []byte) (*ShiftJournalResult, error) {
	f, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res := &ShiftJournalResult{}
	for _, sheet := range f.GetSheetList() {
		date, shift, ok := ParseSheetLabel(sheet)
		if !ok {
			continue
		}
		rows, err := sheetRows(f, sheet)
		if err != nil {
			return nil, err
		}
		parseShiftSheet(res, sheet, rows, date, shift)
	}
	return res, nil
}

func parseShiftSheet(res *ShiftJournalResult, sheet string, rows [][]string, date time.Time, shift int) {
	parseShiftThroughput(res, sheet, rows, date, shift)
	parseShiftHourly(res, sheet, rows, date, shift)

	start, found := findDowntimeSection(rows)
	if !found {
		return
	}
	parseShiftDowntime(res, sheet, rows, start, date, shift)
}

// parseShiftThroughput reads the designated total-throughput cell. The row
// is recorded whenever the cell exists or a numeric value was obtained; a
// present but non-numeric cell yields a warning and a nil throughput.
func parseShiftThroughput(res *ShiftJournalResult, sheet string, rows [][]string, date time.Time, shift int) {
	raw := rawCell(rows, throughputRow, throughputCol)
	value, numeric := ParseLooseNumeric(raw)

	if strings.TrimSpace(raw) == "" && !numeric {
		return
	}
	rec := domain.MillThroughputRecord{Date: date, ShiftNumber: shift}
	if numeric {
		rec.ValueTph = &value
	} else {
		res.Warnings = append(res.Warnings, Warning{
			Sheet: sheet, Row: throughputRow, Col: throughputCol,
			Message: fmt.Sprintf("throughput cell is not numeric: %q", CleanText(raw)),
		})
	}
	res.Throughput = append(res.Throughput, rec)
}

// parseShiftHourly scans the fixed hourly window. Column 0 is the hour
// label, columns 1..5 are the five mill lines.
func parseShiftHourly(res *ShiftJournalResult, sheet string, rows [][]string, date time.Time, shift int) {
	for r := hourlyFirstRow; r <= hourlyLastRow; r++ {
		label := cell(rows, r, hourLabelCol)
		if strings.EqualFold(label, averageRowLabel) {
			continue
		}
		hourVal, ok := ParseLooseNumeric(label)
		if !ok {
			continue
		}
		hour := int(hourVal)
		if hour < 0 || hour > 24 {
			continue
		}
		if hour == 24 {
			hour = 0
		}
		for line := 1; line <= millCount; line++ {
			raw := rawCell(rows, r, millFirstCol+line-1)
			if value, ok := ParseLooseNumeric(raw); ok {
				v := value
				res.Productivity = append(res.Productivity, domain.ProductivityRecord{
					Date: date, ShiftNumber: shift, Hour: hour, MillLine: line, ValuePct: &v,
				})
				continue
			}
			if strings.HasPrefix(strings.TrimSpace(raw), "#") {
				res.Warnings = append(res.Warnings, Warning{
					Sheet: sheet, Row: r, Col: millFirstCol + line - 1,
					Message: fmt.Sprintf("formula error in mill line %d: %q", line, CleanText(raw)),
				})
			}
			// blank or free text: a normal empty cell, skipped silently
		}
	}
}

// findDowntimeSection scans all rows for the downtime marker; the section
// begins on the row after it.
func findDowntimeSection(rows [][]string) (int, bool) {
	for r := range rows {
		for c := range rows[r] {
			if strings.Contains(rows[r][c], downtimeMarker) {
				return r + 1, true
			}
		}
	}
	return 0, false
}

// parseShiftDowntime walks the downtime section with a single open record:
// a "№" row flushes the previous record and opens a new one, a terminator
// row flushes a record that carries text or minutes and stops the scan,
// and any other row is a continuation whose reason text is appended.
func parseShiftDowntime(res *ShiftJournalResult, sheet string, rows [][]string, start int, date time.Time, shift int) {
	var current *domain.ShiftDowntimeRecord

	for r := start; r < len(rows); r++ {
		first := cell(rows, r, downtimeEquipCol)

		if strings.Contains(first, sectionEndRemnant) || strings.Contains(first, sectionEndLoading) {
			if current != nil && (current.ReasonText != nil || current.Minutes != nil) {
				res.Downtime = append(res.Downtime, *current)
			}
			return
		}

		if strings.HasPrefix(first, equipmentRowPrefix) {
			if current != nil {
				res.Downtime = append(res.Downtime, *current)
			}
			rec := domain.ShiftDowntimeRecord{Date: date, ShiftNumber: shift, Equipment: first}
			rec.TimeFrom = downtimeTimeCell(rows, r, downtimeFromCol)
			rec.TimeTo = downtimeTimeCell(rows, r, downtimeToCol)
			rec.Minutes = downtimeMinutesCell(rows, r, downtimeMinutesCol)
			if reason := cell(rows, r, downtimeReasonCol); reason != "" {
				rec.ReasonText = &reason
			}
			current = &rec
			continue
		}

		if current == nil {
			continue
		}
		if reason := cell(rows, r, downtimeReasonCol); reason != "" {
			if current.ReasonText == nil {
				current.ReasonText = &reason
			} else {
				joined := *current.ReasonText + "\n" + reason
				current.ReasonText = &joined
			}
		}
	}

	if current != nil {
		res.Downtime = append(res.Downtime, *current)
	}
}

// downtimeTimeCell interprets a from/to cell: a numeric value in (0,1) is an
// Excel day-fraction, anything else is kept as literal text.
func downtimeTimeCell(rows [][]string, r, c int) *string {
	raw := cell(rows, r, c)
	if raw == "" {
		return nil
	}
	if v, ok := ParseLooseNumeric(raw); ok && v > 0 && v < 1 {
		t := FractionToTime(v)
		return &t
	}
	return &raw
}

// downtimeMinutesCell accepts a plain number of minutes or a "N час" text,
// which converts to N*60.
func downtimeMinutesCell(rows [][]string, r, c int) *float64 {
	raw := cell(rows, r, c)
	if raw == "" {
		return nil
	}
	if v, ok := ParseLooseNumeric(raw); ok {
		return &v
	}
	if m := hoursTextRe.FindStringSubmatch(raw); m != nil {
		if h, ok := ParseLooseNumeric(strings.ReplaceAll(m[1], ",", ".")); ok {
			v := h * 60
			return &v
		}
	}
	return nil
}
