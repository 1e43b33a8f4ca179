package rank

import "strconv"

// Ordinal formats n with its English ordinal suffix: 1st, 2nd, 3rd, 4th,
// 11th, 12th, 13th, 21st, 111th.
func Ordinal(n int) string {
	suffix := "th"
	switch v := n % 100; {
	case v >= 11 && v <= 13, v <= -11 && v >= -13:
	default:
		switch abs(n % 10) {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
