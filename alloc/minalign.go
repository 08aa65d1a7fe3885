//go:build !(arm || mips || mipsle)

package alloc

// MinAlign is the alignment the backend guarantees without alignment flags.
const MinAlign uintptr = 16
