package utils

import "math"

// CreateRankList returns ranks 1..count for items that are already sorted best first.
// Ranks saturate at math.MaxUint16.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range ranks {
		ranks[i] = uint16(min(i+1, math.MaxUint16))
	}
	return ranks
}
