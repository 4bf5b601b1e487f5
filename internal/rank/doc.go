// Package rank provides types and functions for annual poll rankings.
//
// The rank package handles entry representation, positional assignment, and
// change detection between two rankings of the same year. Positions are
// always assigned from extraction order, so a valid ranking holds exactly the
// positions 1..N.
package rank
