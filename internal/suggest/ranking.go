package suggest

import "sort"

// RankRecommendations sorts recommendations by priority, highest first.
// Recommendations of equal priority keep their relative order.
func RankRecommendations(recs []Recommendation) []Recommendation {
	sorted := make([]Recommendation, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}

// CountByCategory tallies recommendations per category.
func CountByCategory(recs []Recommendation) map[string]int {
	counts := make(map[string]int)
	for _, r := range recs {
		counts[r.Category]++
	}
	return counts
}
