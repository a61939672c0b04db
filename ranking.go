package studybot

import "fmt"

// DenseRanks assigns a rank to each member of a descending-ordered totals
// slice. Tied totals share a rank; the next distinct total resumes at its
// 1-based position, so [100, 100, 50] ranks 1, 1, 3.
func DenseRanks(rows []MemberTotal) map[UserID]int {
	ranks := make(map[UserID]int, len(rows))
	rank := 0
	prev := -1
	for i, row := range rows {
		if row.Seconds != prev {
			rank = i + 1
			prev = row.Seconds
		}
		ranks[row.UserID] = rank
	}
	return ranks
}

// FormatHMS renders a second count as HH:MM:SS.
func FormatHMS(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
