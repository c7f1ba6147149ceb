package xlsx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildShiftWorkbook(t *testing.T, sheet string, cells map[string]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, ref, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestParseShiftJournal_EndToEnd(t *testing.T) {
	data := buildShiftWorkbook(t, "01.01.26см1", map[string]any{
		"H2": 150.5, // throughput cell
		"A6": 5,     // hour label (row 5, inside the hourly window)
		"B6": 82.3,  // mill line 1
		// downtime section
		"A20": "Простой мельниц",
		"A21": "№1",
		"B21": 0.25,
		"C21": 0.5,
		"D21": "2 час",
		"E21": "произошел пожар на складе",
		"E22": "вызвали пожарных",
		"A23": "Остаток на складе",
	})

	res, err := ParseShiftJournal(data)
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Len(t, res.Productivity, 1)
	p := res.Productivity[0]
	require.Equal(t, date, p.Date)
	require.Equal(t, 1, p.ShiftNumber)
	require.Equal(t, 5, p.Hour)
	require.Equal(t, 1, p.MillLine)
	require.NotNil(t, p.ValuePct)
	require.InDelta(t, 82.3, *p.ValuePct, 1e-9)

	require.Len(t, res.Throughput, 1)
	require.NotNil(t, res.Throughput[0].ValueTph)
	require.InDelta(t, 150.5, *res.Throughput[0].ValueTph, 1e-9)

	require.Len(t, res.Downtime, 1)
	d := res.Downtime[0]
	require.Equal(t, "№1", d.Equipment)
	require.NotNil(t, d.TimeFrom)
	require.Equal(t, "06:00", *d.TimeFrom)
	require.NotNil(t, d.TimeTo)
	require.Equal(t, "12:00", *d.TimeTo)
	require.NotNil(t, d.Minutes)
	require.InDelta(t, 120, *d.Minutes, 1e-9) // "2 час" -> 120
	require.NotNil(t, d.ReasonText)
	require.Equal(t, "произошел пожар на складе\nвызвали пожарных", *d.ReasonText)
}

func TestParseShiftJournal_IgnoresAuxiliarySheets(t *testing.T) {
	data := buildShiftWorkbook(t, "Сводка", map[string]any{
		"A6": 5,
		"B6": 82.3,
	})
	res, err := ParseShiftJournal(data)
	require.NoError(t, err)
	require.Empty(t, res.Productivity)
	require.Empty(t, res.Throughput)
	require.Empty(t, res.Warnings)
}

func TestParseShiftSheet_HourNormalizationAndSkips(t *testing.T) {
	rows := make([][]string, 17)
	rows[4] = []string{"24", "50"}      // hour 24 normalizes to 0
	rows[5] = []string{"среднее", "77"} // average row skipped
	rows[6] = []string{"25", "60"}      // out-of-range hour skipped
	rows[7] = []string{"3", "", "#REF!", "текст", "41"} // blank/noise/warning mix

	res := &ShiftJournalResult{}
	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	parseShiftSheet(res, "01.01.26см1", rows, date, 1)

	require.Len(t, res.Productivity, 2)
	require.Equal(t, 0, res.Productivity[0].Hour)
	require.InDelta(t, 50, *res.Productivity[0].ValuePct, 1e-9)
	require.Equal(t, 3, res.Productivity[1].Hour)
	require.Equal(t, 4, res.Productivity[1].MillLine)
	require.InDelta(t, 41, *res.Productivity[1].ValuePct, 1e-9)

	// formula error produces exactly one warning, free text none
	require.Len(t, res.Warnings, 1)
	require.Equal(t, 7, res.Warnings[0].Row)
	require.Equal(t, 2, res.Warnings[0].Col)
}

func TestParseShiftSheet_ThroughputNonNumericWarns(t *testing.T) {
	rows := make([][]string, 17)
	rows[1] = []string{"", "", "", "", "", "", "", "нет данных"}

	res := &ShiftJournalResult{}
	parseShiftSheet(res, "s", rows, time.Now(), 1)

	require.Len(t, res.Throughput, 1)
	require.Nil(t, res.Throughput[0].ValueTph)
	require.Len(t, res.Warnings, 1)
}

func TestParseShiftSheet_ThroughputAbsentNotRecorded(t *testing.T) {
	rows := make([][]string, 17)
	res := &ShiftJournalResult{}
	parseShiftSheet(res, "s", rows, time.Now(), 1)
	require.Empty(t, res.Throughput)
	require.Empty(t, res.Warnings)
}

func TestParseShiftDowntime_StateMachine(t *testing.T) {
	date := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		rows [][]string
		want int
		check func(t *testing.T, res *ShiftJournalResult)
	}{
		{
			name: "new equipment row flushes previous record",
			rows: [][]string{
				{"Простой мельниц"},
				{"№1", "", "", "30", "подшипник"},
				{"№2", "", "", "45", "эл.двигатель"},
			},
			want: 2,
			check: func(t *testing.T, res *ShiftJournalResult) {
				require.Equal(t, "№1", res.Downtime[0].Equipment)
				require.Equal(t, "№2", res.Downtime[1].Equipment)
			},
		},
		{
			name: "terminator drops an empty in-progress record",
			rows: [][]string{
				{"Простой мельниц"},
				{"№3"},
				{"Загрузка мельниц"},
			},
			want: 0,
		},
		{
			name: "terminator keeps a record carrying minutes",
			rows: [][]string{
				{"Простой мельниц"},
				{"№3", "", "", "15"},
				{"Остаток"},
			},
			want: 1,
		},
		{
			name: "continuation rows accumulate reason text",
			rows: [][]string{
				{"Простой мельниц"},
				{"№1", "", "", "", "первая строка"},
				{"", "", "", "", "вторая строка"},
				{"", "", "", "", ""},
				{"", "", "", "", "третья строка"},
			},
			want: 1,
			check: func(t *testing.T, res *ShiftJournalResult) {
				require.Equal(t, "первая строка\nвторая строка\nтретья строка", *res.Downtime[0].ReasonText)
			},
		},
		{
			name: "rows before the first equipment row are ignored",
			rows: [][]string{
				{"Простой мельниц"},
				{"", "", "", "", "шапка таблицы"},
				{"№1", "", "", "10"},
			},
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &ShiftJournalResult{}
			start, found := findDowntimeSection(tt.rows)
			require.True(t, found)
			parseShiftDowntime(res, "s", tt.rows, start, date, 2)
			require.Len(t, res.Downtime, tt.want)
			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}

func TestParseShiftSheet_NoDowntimeMarkerKeepsOtherStreams(t *testing.T) {
	rows := make([][]string, 17)
	rows[4] = []string{"1", "90"}
	res := &ShiftJournalResult{}
	parseShiftSheet(res, "s", rows, time.Now(), 1)
	require.Len(t, res.Productivity, 1)
	require.Empty(t, res.Downtime)
}
