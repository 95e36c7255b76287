package engine

// ValidEquation reports whether the values form an addition equation: one
// value is the result and some non-empty subset of the others sums to it.
// Values left out of the sum are still played. At least three cards are
// required.
func ValidEquation(values []int) bool {
	if len(values) < 3 {
		return false
	}
	for r, result := range values {
		if result > 0 && subsetSums(values, r, result) {
			return true
		}
	}
	return false
}

// subsetSums reports whether a non-empty subset of values, skipping index
// skip, adds up to target. Values are positive, so reach[0] marks the empty
// subset only.
func subsetSums(values []int, skip, target int) bool {
	reach := make([]bool, target+1)
	reach[0] = true
	for i, v := range values {
		if i == skip || v <= 0 || v > target {
			continue
		}
		for s := target; s >= v; s-- {
			if reach[s-v] {
				reach[s] = true
			}
		}
	}
	return reach[target]
}

// handHasEquation reports whether some subset of the number cards in hand
// forms a valid equation.
func handHasEquation(hand []Card) bool {
	var nums []int
	for _, c := range hand {
		if c.IsNumber() {
			nums = append(nums, int(c.Value))
		}
	}
	n := len(nums)
	if n < 3 {
		return false
	}
	subset := make([]int, 0, n)
	for mask := 1; mask < 1<<n; mask++ {
		subset = subset[:0]
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				subset = append(subset, nums[i])
			}
		}
		if ValidEquation(subset) {
			return true
		}
	}
	return false
}
