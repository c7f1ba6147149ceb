package xlsx

import (
	"errors"
	"sort"
	"strings"
	"time"

	"mill-data/internal/domain"
)

// waterGroup is the discovered layout of one side-by-side month block: the
// date column plus the measurement columns classified from the header row.
// A column index of -1 means the block does not carry that measurement.
type waterGroup struct {
	monthLabel string
	dateCol    int
	meterCol   int
	dailyCol   int
	hourlyCol  int
	nominalCol int
}

func (g *waterGroup) usable() bool {
	return g.meterCol >= 0 || g.dailyCol >= 0
}

// WaterResult is the per-date merged output of one water workbook.
type WaterResult struct {
	Records  []domain.WaterDailyRecord
	Warnings []Warning
}

// ParseWater extracts daily water consumption records from a workbook whose
// single sheet holds repeated month-group blocks side by side. Rows for the
// same date coming from overlapping blocks are merged preferring the first
// non-nil value per field.
func ParseWater(data []byte) (*WaterResult, error) {
	f, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("water workbook has no sheets")
	}
	rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}

	res := &WaterResult{}
	groups := discoverWaterGroups(rows)
	if len(groups) == 0 {
		res.Warnings = append(res.Warnings, Warning{
			Sheet: sheet, Row: -1, Col: -1,
			Message: "no month groups recognized (no \"дата\" headers with measurement columns)",
		})
		return res, nil
	}

	byDate := map[time.Time]*domain.WaterDailyRecord{}
	for _, g := range groups {
		extractWaterGroup(rows, g, byDate)
	}

	res.Records = make([]domain.WaterDailyRecord, 0, len(byDate))
	for _, rec := range byDate {
		res.Records = append(res.Records, *rec)
	}
	sort.Slice(res.Records, func(i, j int) bool {
		return res.Records[i].Date.Before(res.Records[j].Date)
	})
	return res, nil
}

// discoverWaterGroups scans header row 1 for "дата" cells; each one opens a
// month group whose measurement columns run until the next "дата" header or
// the end of the row. The group's month label is found by looking backward
// along row 0 for the nearest cell carrying a 4-digit year or the "год"
// marker.
func discoverWaterGroups(rows [][]string) []waterGroup {
	if len(rows) < 2 {
		return nil
	}
	header := rows[1]
	var groups []waterGroup
	for c := 0; c < len(header); c++ {
		if strings.ToLower(CleanText(header[c])) != "дата" {
			continue
		}
		g := waterGroup{
			monthLabel: findMonthLabel(rows, c),
			dateCol:    c,
			meterCol:   -1, dailyCol: -1, hourlyCol: -1, nominalCol: -1,
		}
		for mc := c + 1; mc < len(header); mc++ {
			h := strings.ToLower(CleanText(header[mc]))
			if h == "дата" {
				break
			}
			// "номинальн" first: a nominal header usually also carries
			// "расход"/"сутки" and must not be taken for the daily actual
			switch {
			case strings.Contains(h, "номинальн"):
				if g.nominalCol < 0 {
					g.nominalCol = mc
				}
			case strings.Contains(h, "показание") || strings.Contains(h, "счетч"):
				if g.meterCol < 0 {
					g.meterCol = mc
				}
			case strings.Contains(h, "фактический расход"),
				strings.Contains(h, "расход") && strings.Contains(h, "сутки"):
				if g.dailyCol < 0 {
					g.dailyCol = mc
				}
			case strings.Contains(h, "расход") && strings.Contains(h, "час"):
				if g.hourlyCol < 0 {
					g.hourlyCol = mc
				}
			}
		}
		if g.usable() {
			groups = append(groups, g)
		}
	}
	return groups
}

// findMonthLabel walks row 0 backward from the date column looking for the
// month-group title (a cell with a 4-digit year or a "год" marker).
func findMonthLabel(rows [][]string, dateCol int) string {
	for c := dateCol; c >= 0; c-- {
		text := cell(rows, 0, c)
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		if yearRe.MatchString(lower) || strings.Contains(lower, "год") {
			return text
		}
	}
	return ""
}

// extractWaterGroup reads data rows (from row 2) of one discovered group
// into the shared per-date map. A row is skipped when its date cell is not
// an Excel serial or when all three measurement fields are empty.
func extractWaterGroup(rows [][]string, g waterGroup, byDate map[time.Time]*domain.WaterDailyRecord) {
	for r := 2; r < len(rows); r++ {
		serial, ok := ParseLooseNumeric(rawCell(rows, r, g.dateCol))
		if !ok {
			continue
		}
		rec := domain.WaterDailyRecord{
			Date:       SerialToDate(serial),
			MonthLabel: g.monthLabel,
		}
		rec.MeterReading = numericField(rows, r, g.meterCol)
		rec.ActualDaily = numericField(rows, r, g.dailyCol)
		rec.ActualHourly = numericField(rows, r, g.hourlyCol)
		rec.NominalDaily = numericField(rows, r, g.nominalCol)

		if rec.MeterReading == nil && rec.ActualDaily == nil && rec.ActualHourly == nil {
			continue
		}
		if existing, dup := byDate[rec.Date]; dup {
			existing.MergeFrom(rec)
		} else {
			r := rec
			byDate[rec.Date] = &r
		}
	}
}

func numericField(rows [][]string, r, c int) *float64 {
	if c < 0 {
		return nil
	}
	if v, ok := ParseLooseNumeric(rawCell(rows, r, c)); ok {
		return &v
	}
	return nil
}
