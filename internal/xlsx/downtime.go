package xlsx

import (
	"fmt"
	"strings"
	"time"

	"mill-data/internal/domain"
)

// Downtime-history zone offsets relative to the date column, in the
// canonical six-equipment layout: reasons immediately after the date,
// minutes at +7, classification at +13.
const (
	historyHeaderRow     = 1
	historyFirstDataRow  = 2
	historyEquipmentSlots = 6
	historyMinutesOffset = 7
	historyClassOffset   = 13
)

// classificationSymbols validates the 8-symbol classification set and
// normalizes the Cyrillic letters to their Latin form.
var classificationSymbols = map[string]domain.Classification{
	"М": domain.ClassMechanical, "M": domain.ClassMechanical,
	"Э": domain.ClassElectrical, "E": domain.ClassElectrical,
	"Т": domain.ClassTechnological, "T": domain.ClassTechnological,
	"П": domain.ClassWeather, "P": domain.ClassWeather,
}

// DowntimeHistoryResult is the output of one downtime-history workbook.
type DowntimeHistoryResult struct {
	Records  []domain.DowntimeDailyRecord
	Warnings []Warning
}

// DowntimeHistoryParser extracts per-day, per-equipment downtime records
// from a monthly history workbook (one sheet per month). The equipment set
// is passed in at construction so tests can run with synthetic names.
type DowntimeHistoryParser struct {
	equipment []string
}

func NewDowntimeHistoryParser(equipment []string) *DowntimeHistoryParser {
	return &DowntimeHistoryParser{equipment: equipment}
}

// Parse processes every sheet of the workbook. A sheet name that does not
// match the month/year convention produces a warning but the sheet is still
// processed.
func (p *DowntimeHistoryParser) Parse(data []byte) (*DowntimeHistoryResult, error) {
	f, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res := &DowntimeHistoryResult{}
	for _, sheet := range f.GetSheetList() {
		if _, _, ok := ParseMonthYearLabel(sheet); !ok {
			res.Warnings = append(res.Warnings, Warning{
				Sheet: sheet, Row: -1, Col: -1,
				Message: fmt.Sprintf("sheet name %q does not carry a month/year label", sheet),
			})
		}
		rows, err := sheetRows(f, sheet)
		if err != nil {
			return nil, err
		}
		p.parseSheet(res, rows)
	}
	return res, nil
}

// parseSheet walks data rows keeping pending records keyed by equipment
// slot for the current date. A row with a numeric date value flushes all
// pending records of the previous date and starts a new date context; a row
// without one is a continuation of the most recent date.
func (p *DowntimeHistoryParser) parseSheet(res *DowntimeHistoryResult, rows [][]string) {
	dateCol := findHistoryDateCol(rows)
	equipment := p.slotNames(rows, dateCol)

	var currentDate time.Time
	haveDate := false
	pending := map[int]*domain.DowntimeDailyRecord{}

	flush := func() {
		for slot := 0; slot < historyEquipmentSlots; slot++ {
			rec, ok := pending[slot]
			if !ok {
				continue
			}
			if rec.ReasonText == nil && rec.Minutes == nil {
				continue
			}
			res.Records = append(res.Records, *rec)
		}
		pending = map[int]*domain.DowntimeDailyRecord{}
	}

	for r := historyFirstDataRow; r < len(rows); r++ {
		if serial, ok := ParseLooseNumeric(rawCell(rows, r, dateCol)); ok {
			flush()
			currentDate = SerialToDate(serial)
			haveDate = true
		}
		if !haveDate {
			continue
		}

		for slot := 0; slot < historyEquipmentSlots; slot++ {
			reason := cell(rows, r, dateCol+1+slot)
			minutes := numericField(rows, r, dateCol+historyMinutesOffset+slot)
			class := parseClassification(cell(rows, r, dateCol+historyClassOffset+slot))
			if reason == "" && minutes == nil && class == nil {
				continue
			}

			if rec, ok := pending[slot]; ok {
				if reason != "" {
					if rec.ReasonText == nil {
						rec.ReasonText = &reason
					} else {
						joined := *rec.ReasonText + "\n" + reason
						rec.ReasonText = &joined
					}
				}
				if minutes != nil {
					rec.Minutes = minutes
				}
				if class != nil {
					rec.Classification = class
				}
				continue
			}

			rec := &domain.DowntimeDailyRecord{
				Date:           currentDate,
				Equipment:      equipment[slot],
				Minutes:        minutes,
				Classification: class,
			}
			if reason != "" {
				rec.ReasonText = &reason
			}
			pending[slot] = rec
		}
	}
	flush()
}

// findHistoryDateCol locates the "Дата" header in the header row, falling
// back to column 0.
func findHistoryDateCol(rows [][]string) int {
	if historyHeaderRow >= len(rows) {
		return 0
	}
	for c := range rows[historyHeaderRow] {
		if strings.Contains(strings.ToLower(CleanText(rows[historyHeaderRow][c])), "дата") {
			return c
		}
	}
	return 0
}

// slotNames resolves the six equipment names: the header cell when present,
// otherwise the configured canonical name for that slot.
func (p *DowntimeHistoryParser) slotNames(rows [][]string, dateCol int) [historyEquipmentSlots]string {
	var names [historyEquipmentSlots]string
	for slot := 0; slot < historyEquipmentSlots; slot++ {
		if h := cell(rows, historyHeaderRow, dateCol+1+slot); h != "" {
			names[slot] = h
		} else if slot < len(p.equipment) {
			names[slot] = p.equipment[slot]
		} else {
			names[slot] = fmt.Sprintf("№%d", slot+1)
		}
	}
	return names
}

func parseClassification(s string) *domain.Classification {
	if s == "" {
		return nil
	}
	if c, ok := classificationSymbols[strings.ToUpper(s)]; ok {
		return &c
	}
	return nil
}
