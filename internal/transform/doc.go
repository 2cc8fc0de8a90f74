// Package transform implements the byte rules applied by the two roles.
//
// Both rules consume exactly one input byte per step. A decimal digit with
// value v expands to a run of v fill bytes (zero bytes for '0'); every other
// byte maps to exactly one output byte. The rules differ only in the fill byte
// and in case handling:
//
//   - Leader: digits become spaces, ASCII letters are upper-cased.
//   - Follower: digits become '*', everything else is copied unchanged.
//
// Because both rules have the same width for every input byte, the output
// streams they produce for the same input are aligned position by position.
// Encode exploits this: a role scans an input range, advances its cursor by
// the rule width and only writes the positions inside its window.
package transform
