// Package testutil provides testing utilities for zspatial.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random geometry, computing exact
// join results by brute force, and comparing join output against them.
//
// # Random Geometry
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(1000, lo, hi)
//	boxes := rng.UniformBoxes(1000, lo, hi, maxSide)
//
// # Exact Join (Ground Truth)
//
//	want := testutil.BruteForceJoin(left, right, geom.Intersecting)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(want, testutil.PairSet(pairs))
package testutil
