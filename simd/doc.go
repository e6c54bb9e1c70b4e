// Package simd provides portable, allocation-free byte-scanning primitives
// used to accelerate unanchored search in prefilter and the interpreter's
// ASCII fast path in vm.
//
// Every function here is pure Go (SWAR — SIMD Within A Register — rather
// than hand-written assembly): they process 8 bytes at a time via uint64
// bitwise tricks instead of per-byte loops. golang.org/x/sys/cpu is used
// only to pick a slightly earlier small-input cutover on hardware known to
// handle unaligned 64-bit loads well; it does not gate a vectorized code
// path, since none is implemented.
package simd
