package xlsx

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// shiftJournalMillHeader is the hourly-table header row of the blank
// shift-journal form.
var shiftJournalMillHeader = []string{
	"Часы работы",
	"Мельница №1",
	"Мельница №2",
	"Мельница №3",
	"Мельница №4",
	"Мельница №5",
}

// ShiftJournalTemplate builds a blank shift-journal workbook for one shift:
// the sheet name carries the date/shift label and all fixed cells sit where
// the parser expects them, so a filled-in template round-trips through
// ParseShiftJournal without warnings.
func ShiftJournalTemplate(date time.Time, shift int) ([]byte, error) {
	f := excelize.NewFile()

	sheet := fmt.Sprintf("%02d.%02d.%02dсм%d", date.Day(), int(date.Month()), date.Year()%100, shift)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name template sheet: %w", err)
	}

	set := func(ref string, v any) {
		// SetCellValue only fails on a bad reference; refs here are fixed
		_ = f.SetCellValue(sheet, ref, v)
	}

	set("G2", "Выработка за смену, т/ч")

	for i, h := range shiftJournalMillHeader {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 4)
		set(cellRef, h)
	}
	for hour := 1; hour <= 12; hour++ {
		set(fmt.Sprintf("A%d", 4+hour), hour)
	}
	set("A17", "среднее")

	set("A19", "Простой мельниц")
	set("A20", "Оборудование")
	set("B20", "с")
	set("C20", "до")
	set("D20", "мин")
	set("E20", "Причина простоя")

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, "A4", "F4", style)
		_ = f.SetCellStyle(sheet, "A19", "E20", style)
	}
	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "F", 13)

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize template: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close template workbook: %w", err)
	}
	return buf.Bytes(), nil
}
