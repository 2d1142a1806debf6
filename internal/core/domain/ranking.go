package domain

import (
	"sort"
	"strings"
)

// RankingMode selects how search results are ordered.
type RankingMode string

const (
	RankCheapest RankingMode = "cheapest"
	RankFastest  RankingMode = "fastest"
)

// RankingStrategy orders trips. Implementations are pure and stable:
// trips with equal keys keep their upstream relative order.
type RankingStrategy interface {
	Sort(trips []Trip) []Trip
}

// CheapestStrategy orders by ascending cost.
type CheapestStrategy struct{}

func (CheapestStrategy) Sort(trips []Trip) []Trip {
	return stableSortBy(trips, func(a, b Trip) bool { return a.Cost < b.Cost })
}

// FastestStrategy orders by ascending duration.
type FastestStrategy struct{}

func (FastestStrategy) Sort(trips []Trip) []Trip {
	return stableSortBy(trips, func(a, b Trip) bool { return a.Duration < b.Duration })
}

// strategies is the closed set of ranking modes. New modes are added here.
var strategies = map[RankingMode]RankingStrategy{
	RankCheapest: CheapestStrategy{},
	RankFastest:  FastestStrategy{},
}

// Strategy returns the ranking strategy for m, or nil for an unknown mode.
func (m RankingMode) Strategy() RankingStrategy {
	return strategies[m]
}

// ParseRankingMode accepts the wire names "cheapest" and "fastest"
// in any case.
func ParseRankingMode(s string) (RankingMode, error) {
	m := RankingMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := strategies[m]; !ok {
		return "", &InvalidCriteriaError{Field: "sort_by", Value: s}
	}
	return m, nil
}

// RankingModes lists the supported modes in a fixed order.
func RankingModes() []RankingMode {
	return []RankingMode{RankCheapest, RankFastest}
}

func (m RankingMode) String() string {
	return string(m)
}

func stableSortBy(trips []Trip, less func(a, b Trip) bool) []Trip {
	out := make([]Trip, len(trips))
	copy(out, trips)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
