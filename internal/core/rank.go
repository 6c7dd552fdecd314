package core

import "sort"

// RankByKarma orders students by karma, highest first, and numbers them
// 1..n. Students with equal karma keep their incoming order.
func RankByKarma(students []Student) []Student {
	ranked := make([]Student, len(students))
	copy(ranked, students)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Karma > ranked[j].Karma
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
