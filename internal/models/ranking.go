package models

// MemberRankingEntry is a reader's row on the member leaderboard
type MemberRankingEntry struct {
	UserID          int64  `json:"userId"`
	Name            string `json:"name"`
	GroupName       string `json:"groupName"`
	Points          int    `json:"points"`
	ProgressPercent int    `json:"progressPercent"`
	Avatar          string `json:"avatar,omitempty"`
	Rank            int    `json:"rank"`
}

// GroupRankingEntry is a group's row on the group leaderboard
type GroupRankingEntry struct {
	GroupName     string `json:"groupName"`
	AveragePoints int    `json:"averagePoints"`
	MemberCount   int    `json:"memberCount"`
	Rank          int    `json:"rank"`
}
