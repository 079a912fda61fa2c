// Package conv provides checked integer conversions for values that cross
// a trust boundary, such as lengths and counts decoded from table files.
//
// A plain Go conversion wraps silently, which turns corrupt on-disk input
// into negative slice bounds. These helpers fail instead, so decode paths
// can surface corruption as an error.
//
// For conversions that are provably safe by domain constraints (loop
// indices, bounded counters), use direct casts instead.
package conv
