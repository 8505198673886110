// Package space implements the Z-order encoding of a D-dimensional integer
// grid.
//
// A Space maps grid coordinates to z-values by interleaving coordinate bits
// in a configurable order. A z-value packs a bit-string of up to 57 bits and
// its length into a uint64, so a region of the grid, its ancestors and its
// descendants can be related with integer operations only:
//
//	s, _ := space.New([]int{10, 10})
//	z := s.Shuffle([]uint64{3, 5}, s.TotalBits())
//	z.Parent().Contains(z) // true
//
// An optional application space maps real coordinates onto the grid.
//
// The package also defines Region, the bisection cursor used during
// decomposition, and Object, the contract spatial objects implement.
package space
