package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack,
// or -1 if needle is not present. It combines Memchr's SWAR byte search
// on needle's last byte (a rare-byte heuristic: word/pattern endings
// tend to be more distinctive than beginnings, and it is O(1) to pick)
// with a verification compare, rather than decoding through
// bytes.Index's own byte-rotation machinery.
func Memmem(haystack, needle []byte) int {
	needleLen := len(needle)
	if needleLen == 0 {
		return 0
	}
	if len(haystack) == 0 || needleLen > len(haystack) {
		return -1
	}
	if needleLen == 1 {
		return Memchr(haystack, needle[0])
	}

	rareIdx := needleLen - 1
	rareByte := needle[rareIdx]

	searchStart := 0
	for {
		candidate := Memchr(haystack[searchStart:], rareByte)
		if candidate == -1 {
			return -1
		}
		candidate += searchStart

		start := candidate - rareIdx
		if start >= 0 && start+needleLen <= len(haystack) && bytes.Equal(haystack[start:start+needleLen], needle) {
			return start
		}

		searchStart = candidate + 1
		if searchStart >= len(haystack) {
			return -1
		}
	}
}
