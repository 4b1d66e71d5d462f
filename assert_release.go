//go:build !georec_debug

package georec

const checkInvariants = false
