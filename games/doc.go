/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package games holds the FLAMES engine.
//
// Two names are reduced to their canonical letters, matching letters are
// crossed off pairwise, and the number of letters left over drives a
// counting-out elimination over the labels F, L, A, M, E and S. The last
// label standing is the result.
//
// Everything here is pure: no I/O, no shared state, no goroutines. The
// server layer paces and persists results on its own.
package games
