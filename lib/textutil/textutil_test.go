package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	require.Equal(t, "s15", NormalizeLabel(" S15 "))
	require.Equal(t, "18b", NormalizeLabel("18B\n"))
	require.Equal(t, "sitea", NormalizeLabel("Site A"))
}

func TestSortLabels(t *testing.T) {
	sorted := SortLabels([]string{"S15", "92", "2", "18B", "18", "S2"})
	require.Equal(t, []string{"2", "18", "18B", "92", "S2", "S15"}, sorted)
}

func TestSortLabelsUnmatched(t *testing.T) {
	// labels without any digits still sort deterministically
	sorted := SortLabels([]string{"overflow", "12", "annex"})
	require.Equal(t, []string{"12", "annex", "overflow"}, sorted)
}
