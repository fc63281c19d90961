package strutil

import (
	"fmt"
	"strings"
)

// FormatSize renders a byte count in a fixed ten column form such as
// "  1.50 MiB" or "999.00   B".
func FormatSize(size uint64) string {
	r := float64(size)
	c := byte(' ')
	switch {
	case r < 1000:
	case r < 1023e3:
		c, r = 'k', r/(1<<10)
	case r < 1023e6:
		c, r = 'M', r/(1<<20)
	case r < 1023e9:
		c, r = 'G', r/(1<<30)
	case r < 1023e12:
		c, r = 'T', r/(1<<40)
	default:
		c, r = 'P', r/(1<<50)
	}
	i := byte('i')
	if c == ' ' {
		i = ' '
	}
	return fmt.Sprintf("%6.2f %c%cB", r, c, i)
}

// CaseStr returns the index of the first ASCII case-insensitive match of
// needle in haystack, or -1.
func CaseStr(haystack, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if equalFoldASCII(haystack[i:i+n], needle) {
			return i
		}
	}
	return -1
}

func equalFoldASCII(a, b string) bool {
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// PrefixAll prepends the concatenation of parts to every element of arr,
// in place, and returns arr.
func PrefixAll(arr []string, parts ...string) []string {
	prefix := strings.Join(parts, "")
	for i := range arr {
		arr[i] = prefix + arr[i]
	}
	return arr
}
