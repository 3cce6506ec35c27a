// Package stats computes running payoff statistics with Welford's online
// algorithm, which stays numerically stable across long observation streams.
package stats

import "math"

// Accumulator tracks the running mean and sum of squared deviations for one
// payoff stream. The zero value is ready to use.
type Accumulator struct {
	n    int
	mean float64
	m2   float64
}

// Add folds one sample into the running statistics.
func (a *Accumulator) Add(x float64) {
	a.n++
	old := a.mean
	a.mean += (x - a.mean) / float64(a.n)
	a.m2 += (x - old) * (x - a.mean)
}

// Count returns the number of samples seen.
func (a *Accumulator) Count() int { return a.n }

// Mean returns the running mean, zero before any sample.
func (a *Accumulator) Mean() float64 { return a.mean }

// SampleStdDev returns the sample standard deviation (n-1 divisor), or nil
// when fewer than two samples have been seen: the statistic is undefined
// there and must never be reported as zero.
func (a *Accumulator) SampleStdDev() *float64 {
	if a.n < 2 {
		return nil
	}
	sd := math.Sqrt(a.m2 / float64(a.n-1))
	return &sd
}

// GroupMeans folds a stream of (group id, payoff) samples into one
// accumulator per group. Used to aggregate a profile's observations by
// symmetry group.
type GroupMeans struct {
	groups map[int]*Accumulator
}

// NewGroupMeans returns an empty per-group aggregator.
func NewGroupMeans() *GroupMeans {
	return &GroupMeans{groups: make(map[int]*Accumulator)}
}

// Add folds one payoff sample for a group.
func (g *GroupMeans) Add(groupID int, payoff float64) {
	acc := g.groups[groupID]
	if acc == nil {
		acc = &Accumulator{}
		g.groups[groupID] = acc
	}
	acc.Add(payoff)
}

// Get returns the accumulator for a group, or nil when the group has no
// samples.
func (g *GroupMeans) Get(groupID int) *Accumulator {
	return g.groups[groupID]
}
