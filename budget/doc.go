// Package budget holds the per-tier execution limits and the token budget
// planner that admits candidate agents into the executed set.
//
// Admission walks candidates in priority order and stops at the first agent
// that would exceed either the tier's parallel limit or its total token
// budget. Later, smaller candidates are never tried, which keeps the cost
// of a request predictable.
package budget
