// Package search finds every ordered sequence of dictionary-backed profiles
// whose letters add up exactly to a target profile.
//
// The search is a depth-first walk over an explicit stack, so its depth is
// bounded by the heap rather than the goroutine stack. Each level tries every
// candidate of the universe that still fits in the residual letters, in
// universe order, which fixes the order of the results.
package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/profile"
)

// pollEvery is how many search steps run between context checks.
const pollEvery = 1024

// Partition is an ordered sequence of profiles that sums to a target.
type Partition []profile.Profile

// Limits bounds a search. Zero values mean no bound and a sequential walk.
type Limits struct {
	// MaxPartitions stops the search once this many partitions were found.
	MaxPartitions int
	// MaxWords discards partitions with more than this many profiles.
	MaxWords int
	// Workers above one explores the top-level candidates concurrently.
	Workers int
}

type Result struct {
	Partitions []Partition
	// Truncated is set once MaxPartitions partitions were collected.
	Truncated bool
	// Visited counts candidate evaluations.
	Visited int
	// Rejected counts partitions dropped by the consistency check.
	Rejected int
}

type frame struct {
	leftover profile.Profile
	next     int
	end      int
}

// Find returns every Partition of target drawn from universe. An empty
// target has exactly one partition, the empty one.
func Find(ctx context.Context, universe []profile.Profile, target profile.Profile, limits Limits) (*Result, error) {
	if target.IsEmpty() {
		return &Result{Partitions: []Partition{{}}}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limits.Workers > 1 && len(universe) > 1 {
		return findParallel(ctx, universe, target, limits)
	}
	return walk(ctx, universe, target, 0, len(universe), limits)
}

func findParallel(ctx context.Context, universe []profile.Profile, target profile.Profile, limits Limits) (*Result, error) {
	branches := make([]*Result, len(universe))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limits.Workers)
	for i, c := range universe {
		if !profile.Contains(target, c) {
			continue
		}
		g.Go(func() error {
			r, err := walk(gctx, universe, target, i, i+1, limits)
			if err != nil {
				return fmt.Errorf("branch %s: %w", c, err)
			}
			branches[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{}
	for _, r := range branches {
		if r == nil {
			continue
		}
		out.Visited += r.Visited
		out.Rejected += r.Rejected
		out.Partitions = append(out.Partitions, r.Partitions...)
		if r.Truncated {
			out.Truncated = true
		}
	}
	if limits.MaxPartitions > 0 && len(out.Partitions) >= limits.MaxPartitions {
		out.Truncated = true
		out.Partitions = out.Partitions[:limits.MaxPartitions]
	}
	return out, nil
}

// walk runs the depth-first search with the top-level candidates restricted
// to universe[lo:hi].
func walk(ctx context.Context, universe []profile.Profile, target profile.Profile, lo, hi int, limits Limits) (*Result, error) {
	res := &Result{}
	stack := []frame{{leftover: target, next: lo, end: hi}}
	chosen := make([]profile.Profile, 0, target.Total())

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= top.end {
			stack = stack[:len(stack)-1]
			if len(chosen) > 0 {
				chosen = chosen[:len(chosen)-1]
			}
			continue
		}
		c := universe[top.next]
		top.next++

		res.Visited++
		if res.Visited%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if c.IsEmpty() || !profile.Contains(top.leftover, c) {
			continue
		}
		remainder, err := profile.Subtract(top.leftover, c)
		if err != nil {
			return nil, fmt.Errorf("subtracting %s from %s: %w", c, top.leftover, err)
		}
		chosen = append(chosen, c)

		if remainder.IsEmpty() {
			if consistent(chosen, stack) {
				res.Partitions = append(res.Partitions, append(Partition(nil), chosen...))
			} else {
				res.Rejected++
			}
			chosen = chosen[:len(chosen)-1]
			if limits.MaxPartitions > 0 && len(res.Partitions) >= limits.MaxPartitions {
				res.Truncated = true
				return res, nil
			}
			continue
		}
		if limits.MaxWords > 0 && len(chosen) >= limits.MaxWords {
			chosen = chosen[:len(chosen)-1]
			continue
		}
		stack = append(stack, frame{leftover: remainder, next: 0, end: len(universe)})
	}
	return res, nil
}

// consistent checks that every suffix of chosen merges back to the residual
// it was picked against; stack[i].leftover is the residual for chosen[i].
func consistent(chosen []profile.Profile, stack []frame) bool {
	var acc profile.Profile
	for i := len(chosen) - 1; i >= 0; i-- {
		acc = profile.Merge(acc, chosen[i])
		if !profile.Equal(acc, stack[i].leftover) {
			return false
		}
	}
	return true
}
