package engagement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify_TableBoundaries(t *testing.T) {
	cases := []struct {
		streak int
		want   string
	}{
		{0, "Bronze 1"},
		{5, "Bronze 1"},
		{6, "Bronze 2"},
		{10, "Bronze 2"},
		{11, "Silver 1"},
		{15, "Silver 1"},
		{16, "Silver 2"},
		{25, "Silver 2"},
		{26, "Gold 1"},
		{40, "Gold 1"},
		{41, "Gold 2"},
		{50, "Gold 2"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(tc.streak).Name, "streak %d", tc.streak)
	}
}

func TestClassify_ClampsOutOfRange(t *testing.T) {
	require.Equal(t, "Bronze 1", Classify(-3).Name)
	require.Equal(t, "Gold 2", Classify(51).Name)
	require.Equal(t, "Gold 2", Classify(1000).Name)
}

func TestClassify_Monotonic(t *testing.T) {
	index := func(name string) int {
		for i, tier := range Tiers() {
			if tier.Name == name {
				return i
			}
		}
		return -1
	}

	prev := 0
	for s := 0; s <= 50; s++ {
		cur := index(Classify(s).Name)
		require.GreaterOrEqual(t, cur, prev, "streak %d", s)
		prev = cur
	}
}

func TestTiers_CoversRangeContiguously(t *testing.T) {
	table := Tiers()
	require.Len(t, table, 6)
	require.Equal(t, 0, table[0].MinStreak)
	require.Equal(t, 50, table[len(table)-1].MaxStreak)

	for i := 1; i < len(table); i++ {
		require.Equal(t, table[i-1].MaxStreak+1, table[i].MinStreak)
	}
}
