package model

import "strconv"

// Dimension codes like "TD2.10" carry an alphabetic prefix and up to three
// numeric groups. Ordering is natural-numeric, not lexicographic, so "TD2.2"
// sorts before "TD2.10" and "TD10.1" after both.

// codeNumberGroups is the maximum number of numeric groups considered when
// ordering codes; missing groups count as zero.
const codeNumberGroups = 3

// SplitCode splits a dimension code into its alphabetic prefix and numeric
// groups. ok is false when the code has no prefix or no leading digit after
// the prefix.
func SplitCode(code string) (prefix string, nums [codeNumberGroups]int, ok bool) {
	i := 0
	for i < len(code) && isLetter(code[i]) {
		i++
	}
	if i == 0 || i == len(code) || !isDigit(code[i]) {
		return "", nums, false
	}
	prefix = code[:i]

	group := 0
	for i < len(code) && group < codeNumberGroups {
		j := i
		for j < len(code) && isDigit(code[j]) {
			j++
		}
		if j == i {
			break
		}
		n, err := strconv.Atoi(code[i:j])
		if err != nil {
			return "", nums, false
		}
		nums[group] = n
		group++
		i = j
		if i < len(code) && code[i] == '.' {
			i++
		}
	}
	return prefix, nums, true
}

// CompareCodes orders two codes by prefix, then numerically group by group.
// Returns a negative value when a sorts before b.
func CompareCodes(a, b string) int {
	ap, an, aok := SplitCode(a)
	bp, bn, bok := SplitCode(b)

	// Unparseable codes keep a stable string order at the end.
	switch {
	case !aok && !bok:
		return compareStrings(a, b)
	case !aok:
		return 1
	case !bok:
		return -1
	}

	if ap != bp {
		return compareStrings(ap, bp)
	}
	for i := 0; i < codeNumberGroups; i++ {
		if an[i] != bn[i] {
			return an[i] - bn[i]
		}
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
