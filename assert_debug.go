//go:build georec_debug

package georec

// checkInvariants enables validation of record headers on every access.
const checkInvariants = true
