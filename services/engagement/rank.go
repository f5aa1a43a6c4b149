package engagement

// Tier is a named rank with an inclusive streak range.
type Tier struct {
	Name      string `json:"name"`
	MinStreak int    `json:"min_streak"`
	MaxStreak int    `json:"max_streak"`
}

var tiers = []Tier{
	{Name: "Bronze 1", MinStreak: 0, MaxStreak: 5},
	{Name: "Bronze 2", MinStreak: 6, MaxStreak: 10},
	{Name: "Silver 1", MinStreak: 11, MaxStreak: 15},
	{Name: "Silver 2", MinStreak: 16, MaxStreak: 25},
	{Name: "Gold 1", MinStreak: 26, MaxStreak: 40},
	{Name: "Gold 2", MinStreak: 41, MaxStreak: 50},
}

// Tiers returns the full rank table in ascending order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Classify maps a streak to its tier. Streaks below the table clamp to
// the lowest tier and streaks above it clamp to the highest, so the
// function is total and monotonic over all ints.
func Classify(streak int) Tier {
	if streak < 0 {
		streak = 0
	}

	for _, t := range tiers {
		if streak >= t.MinStreak && streak <= t.MaxStreak {
			return t
		}
	}

	return tiers[len(tiers)-1]
}
