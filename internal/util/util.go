package util

import (
	"sort"
	"strings"
)

// OrderedKeys returns the keys of m, sorted alphabetically.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, len(m))
	var curKeyIdx int
	for k := range m {
		keys[curKeyIdx] = k
		curKeyIdx++
	}
	sort.Strings(keys)
	return keys
}

// InSlice returns whether s is present in the given slice by simple equality
// comparison.
func InSlice[E comparable](s E, slice []E) bool {
	for i := range slice {
		if slice[i] == s {
			return true
		}
	}
	return false
}

// EqualSlices returns whether the two slices have equal elements in the same
// order.
func EqualSlices[E comparable](sl1 []E, sl2 []E) bool {
	if len(sl1) != len(sl2) {
		return false
	}

	for i := range sl1 {
		if sl1[i] != sl2[i] {
			return false
		}
	}

	return true
}

// ArticleFor returns the article for the given string. It will be capitalized
// the same as the string. If definite is true, the returned article will be
// "the"; otherwise it will be "a"/"an" depending on the string.
func ArticleFor(s string, definite bool) string {
	sRunes := []rune(s)

	var art string

	if definite {
		art = "the"
		if len(sRunes) > 0 && isUpperLetter(sRunes[0]) {
			art = "The"
		}
	} else {
		art = "a"
		if len(sRunes) > 0 {
			switch sRunes[0] {
			case 'a', 'e', 'i', 'o', 'u':
				art = "an"
			case 'A', 'E', 'I', 'O', 'U':
				art = "An"
			default:
				if isUpperLetter(sRunes[0]) {
					art = "A"
				}
			}
		}
	}

	return art
}

func isUpperLetter(r rune) bool {
	return 'A' <= r && r <= 'Z'
}

// MakeTextList gives a nice list of things based on their display name. The
// final item is joined with "or".
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	if len(items) == 1 {
		output += items[0]
	} else if len(items) == 2 {
		output += items[0] + " or " + items[1]
	} else {
		// if its more than two, use an oxford comma
		itemsCopy := make([]string, len(items))
		copy(itemsCopy, items)
		itemsCopy[len(itemsCopy)-1] = "or " + itemsCopy[len(itemsCopy)-1]
		output += strings.Join(itemsCopy, ", ")
	}

	return output
}
