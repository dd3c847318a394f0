// Package ranking builds the member and group leaderboards from stored user scores.
package ranking

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"ontheway/internal/models"
)

// RankMembers orders users by points, highest first, with dense ranks:
// tied users share a rank and the next distinct score gets rank+1.
func RankMembers(users []models.User) []models.MemberRankingEntry {
	entries := make([]models.MemberRankingEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, models.MemberRankingEntry{
			UserID:          u.ID,
			Name:            u.Name,
			GroupName:       u.GroupName,
			Points:          u.Points,
			ProgressPercent: u.ProgressPercent,
			Avatar:          u.Avatar,
		})
	}

	slices.SortStableFunc(entries, func(a, b models.MemberRankingEntry) int {
		return cmp.Compare(b.Points, a.Points)
	})

	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Points != entries[i-1].Points {
			rank++
		}
		entries[i].Rank = rank
	}
	return entries
}

// NormalizeGroup is the key groups are merged on
func NormalizeGroup(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// RankGroups averages member points per normalized group and ranks groups
// sequentially by that average. Ties keep the order in which each group first
// appears in users. Users without a group share the "" group.
func RankGroups(users []models.User) []models.GroupRankingEntry {
	type acc struct {
		total, count int
	}
	var order []string
	groups := map[string]*acc{}

	for _, u := range users {
		key := NormalizeGroup(u.GroupName)
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
			order = append(order, key)
		}
		g.total += u.Points
		g.count++
	}

	entries := make([]models.GroupRankingEntry, 0, len(order))
	for _, key := range order {
		g := groups[key]
		entries = append(entries, models.GroupRankingEntry{
			GroupName:     key,
			AveragePoints: int(math.Round(float64(g.total) / float64(g.count))),
			MemberCount:   g.count,
		})
	}

	slices.SortStableFunc(entries, func(a, b models.GroupRankingEntry) int {
		return cmp.Compare(b.AveragePoints, a.AveragePoints)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
