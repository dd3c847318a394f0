package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ontheway/internal/models"
)

func usersWithPoints(points ...int) []models.User {
	users := make([]models.User, len(points))
	for i, p := range points {
		users[i] = models.User{ID: int64(i + 1), Name: string(rune('A' + i)), Points: p}
	}
	return users
}

func ranks(entries []models.MemberRankingEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Rank
	}
	return out
}

func TestRankMembers(t *testing.T) {
	tests := []struct {
		name   string
		points []int
		want   []int
	}{
		{"dense ties", []int{100, 80, 80, 50}, []int{1, 2, 2, 3}},
		{"triple tie", []int{50, 50, 50, 40, 30, 30}, []int{1, 1, 1, 2, 3, 3}},
		{"unsorted input", []int{30, 50, 40, 50}, []int{1, 1, 2, 3}},
		{"all zero", []int{0, 0}, []int{1, 1}},
		{"single", []int{7}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ranks(RankMembers(usersWithPoints(tt.points...))))
		})
	}
}

func TestRankMembersOrderAndProjection(t *testing.T) {
	users := []models.User{
		{ID: 1, Name: "Ana", GroupName: "Shalom", Points: 10, ProgressPercent: 2, Avatar: "data:image/png;base64,AA=="},
		{ID: 2, Name: "Bia", GroupName: "Vida", Points: 30, ProgressPercent: 5},
		{ID: 3, Name: "Caio", GroupName: "Vida", Points: 10, ProgressPercent: 3},
	}
	entries := RankMembers(users)
	require.Len(t, entries, 3)

	assert.Equal(t, "Bia", entries[0].Name)
	// equal points keep input order
	assert.Equal(t, "Ana", entries[1].Name)
	assert.Equal(t, "Caio", entries[2].Name)
	assert.Equal(t, "data:image/png;base64,AA==", entries[1].Avatar)
	assert.Equal(t, "Shalom", entries[1].GroupName)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 2, entries[2].Rank)

	// input is not reordered
	assert.Equal(t, "Ana", users[0].Name)
}

func TestRankGroups(t *testing.T) {
	t.Run("tie keeps input order", func(t *testing.T) {
		users := []models.User{
			{GroupName: "A", Points: 10},
			{GroupName: "A", Points: 20},
			{GroupName: "B", Points: 15},
		}
		entries := RankGroups(users)
		require.Len(t, entries, 2)
		assert.Equal(t, models.GroupRankingEntry{GroupName: "A", AveragePoints: 15, MemberCount: 2, Rank: 1}, entries[0])
		assert.Equal(t, models.GroupRankingEntry{GroupName: "B", AveragePoints: 15, MemberCount: 1, Rank: 2}, entries[1])
	})

	t.Run("names are normalized", func(t *testing.T) {
		users := []models.User{
			{GroupName: " shalom ", Points: 4},
			{GroupName: "SHALOM", Points: 6},
		}
		entries := RankGroups(users)
		require.Len(t, entries, 1)
		assert.Equal(t, "SHALOM", entries[0].GroupName)
		assert.Equal(t, 2, entries[0].MemberCount)
		assert.Equal(t, 5, entries[0].AveragePoints)
	})

	t.Run("sorted by average with sequential ranks", func(t *testing.T) {
		users := []models.User{
			{GroupName: "low", Points: 1},
			{GroupName: "high", Points: 9},
			{GroupName: "mid", Points: 5},
			{GroupName: "mid", Points: 6},
		}
		entries := RankGroups(users)
		require.Len(t, entries, 3)
		assert.Equal(t, []string{"HIGH", "MID", "LOW"}, []string{entries[0].GroupName, entries[1].GroupName, entries[2].GroupName})
		assert.Equal(t, 6, entries[1].AveragePoints) // 5.5 rounds up
		assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
	})

	t.Run("users without group form their own group", func(t *testing.T) {
		entries := RankGroups([]models.User{
			{GroupName: "  ", Points: 100},
			{GroupName: "x", Points: 1},
			{GroupName: "", Points: 50},
		})
		require.Len(t, entries, 2)
		assert.Equal(t, "", entries[0].GroupName)
		assert.Equal(t, 75, entries[0].AveragePoints)
		assert.Equal(t, 2, entries[0].MemberCount)
		assert.Equal(t, "X", entries[1].GroupName)
	})
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, RankMembers(nil))
	assert.Empty(t, RankGroups(nil))
	assert.NotNil(t, RankMembers(nil))
	assert.NotNil(t, RankGroups(nil))
}

func TestNormalizeGroup(t *testing.T) {
	assert.Equal(t, "SHALOM", NormalizeGroup("  Shalom\t"))
	assert.Equal(t, "", NormalizeGroup("   "))
}
