package simd

// IsASCII checks if all bytes in the slice are ASCII (< 0x80).
// Returns true if all bytes have the high bit clear (values 0x00-0x7F).
//
// This is a portable pure-Go implementation using SWAR (SIMD Within A Register)
// technique, which processes 8 bytes at a time using uint64 bitwise operations.
//
// Performance characteristics (pure Go SWAR):
//   - Small inputs (< 8 bytes, or < 4 when hasFastUnalignedAccess is
//     set): byte-by-byte comparison
//   - Medium/large inputs: ~10 GB/s throughput (memory bandwidth limited)
//
// The interpreter (package vm) calls it once per input: when the input
// is ASCII-only, word-boundary checks classify single bytes instead of
// decoding UTF-8.
//
// See isASCIIGeneric for implementation details.
func IsASCII(data []byte) bool {
	return isASCIIGeneric(data)
}
