// Package quota manages per-user monthly scenario usage against
// tier-based ceilings.
//
// The durable quota record (tier, scenarios accessed, last reset date)
// is owned by the external user store; this package reads it,
// applies the monthly reset, and conditionally increments it. The
// check-then-increment is atomic per user: two overlapping requests
// holding the last remaining slot admit exactly one.
//
// Ceilings: free=5, basic=20, premium=unlimited per calendar month.
// The counter resets exactly once when the current (year, month)
// differs from the record's last reset.
package quota
