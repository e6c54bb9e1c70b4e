package simd

import "golang.org/x/sys/cpu"

// hasFastUnalignedAccess reports whether the host CPU is known to handle
// unaligned 64-bit loads efficiently. On x86-64 this is effectively always
// true; the probe exists so IsASCII's SWAR scan can leave its
// small-input byte-by-byte path a little earlier on hardware that
// doesn't penalize it, without hand-written assembly per architecture.
var hasFastUnalignedAccess = cpu.X86.HasSSE42 || cpu.ARM64.HasASIMD
