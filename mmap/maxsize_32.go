//go:build 386 || arm || ppc || mips || mipsle

package mmap

// MaxSize is the largest mapping a Region can grow to.
const MaxSize = 0x7FFFFFFF // 2GB
