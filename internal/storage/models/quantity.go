package models

// MaxQuantity bounds every stored count: owned copies, the owned energy
// pool and a deck's basic energy.
const MaxQuantity = 9999

// ClampQuantity limits n to [0, MaxQuantity].
func ClampQuantity(n int) int {
	return min(max(n, 0), MaxQuantity)
}

// AddQuantity returns current+delta clamped to [0, MaxQuantity]. Large
// deltas saturate instead of overflowing.
func AddQuantity(current, delta int) int {
	current = ClampQuantity(current)
	switch {
	case delta >= MaxQuantity-current:
		return MaxQuantity
	case delta <= -current:
		return 0
	}
	return current + delta
}
