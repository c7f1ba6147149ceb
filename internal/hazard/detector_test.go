package hazard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mill-data/internal/domain"
)

func testKeywords() Keywords {
	return Keywords{
		High:   []string{"травм", "взрыв", "пожар"},
		Medium: []string{"дым", "искр"},
		Low:    []string{"течь", "вибрац"},
	}
}

func TestDetect_HighShortCircuits(t *testing.T) {
	d := NewDetector(testKeywords())

	got := d.Detect("Произошел ПОЖАР на складе, сильный дым")
	require.Len(t, got, 1)
	require.Equal(t, domain.SeverityHigh, got[0].Severity)
	require.Equal(t, "пожар", got[0].MatchedKeyword)
	require.Equal(t, "Произошел ПОЖАР на складе, сильный дым", got[0].Description)
}

func TestDetect_HighFirstInListOrderWins(t *testing.T) {
	d := NewDetector(testKeywords())

	// both "взрыв" and "пожар" are present; list order decides
	got := d.Detect("пожар после взрыва")
	require.Len(t, got, 1)
	require.Equal(t, "взрыв", got[0].MatchedKeyword)
}

func TestDetect_MediumCollectsAllAndSkipsLow(t *testing.T) {
	d := NewDetector(testKeywords())

	got := d.Detect("дым и искры из подшипника, течь масла")
	require.Len(t, got, 2)
	require.Equal(t, domain.SeverityMedium, got[0].Severity)
	require.Equal(t, "дым", got[0].MatchedKeyword)
	require.Equal(t, "искр", got[1].MatchedKeyword)
}

func TestDetect_LowOnlyWhenNothingAbove(t *testing.T) {
	d := NewDetector(testKeywords())

	got := d.Detect("обнаружена течь гидравлики")
	require.Len(t, got, 1)
	require.Equal(t, domain.SeverityLow, got[0].Severity)
	require.Equal(t, "течь", got[0].MatchedKeyword)
}

func TestDetect_NoMatch(t *testing.T) {
	d := NewDetector(testKeywords())
	require.Empty(t, d.Detect("плановая замена футеровки"))
	require.Empty(t, d.Detect(""))
}
