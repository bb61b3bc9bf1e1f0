package tree

import (
	"fmt"
	"math"
)

// GroupingStats aggregates the member counts of all groups that share a
// classifier.
type GroupingStats struct {
	min, max   int
	sum, count int
}

// NewGroupingStats seeds the bounds with the first observed count. The count
// itself still has to be folded in with Add.
func NewGroupingStats(first int) *GroupingStats {
	return &GroupingStats{min: first, max: first}
}

// Add folds one group's member count into the statistics.
func (s *GroupingStats) Add(n int) {
	s.min = min(s.min, n)
	s.max = max(s.max, n)
	s.sum += n
	s.count++
}

func (s *GroupingStats) MinimalCount() int { return s.min }
func (s *GroupingStats) MaximalCount() int { return s.max }
func (s *GroupingStats) ChildSum() int     { return s.sum }
func (s *GroupingStats) GroupCount() int   { return s.count }

// Average returns ChildSum / GroupCount, or NaN before the first Add.
func (s *GroupingStats) Average() float32 {
	if s.count == 0 {
		return float32(math.NaN())
	}
	return float32(s.sum) / float32(s.count)
}

func (s *GroupingStats) String() string {
	return fmt.Sprintf("[%d,%d] %d/%d", s.min, s.max, s.sum, s.count)
}

// StatsCalculator folds the groups of many parents into per-classifier
// statistics.
type StatsCalculator struct {
	grouper *Grouper
}

func NewStatsCalculator(g *Grouper) *StatsCalculator {
	return &StatsCalculator{grouper: g}
}

// Stats groups the children of every node and aggregates the group sizes by
// classifier. Leaves contribute nothing.
func (c *StatsCalculator) Stats(nodes []Node) (map[*Classifier]*GroupingStats, error) {
	stats := make(map[*Classifier]*GroupingStats)
	for _, n := range nodes {
		groups, ok, err := c.grouper.Groups(n)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, g := range groups {
			s, seen := stats[g.Classifier]
			if !seen {
				s = NewGroupingStats(g.Len())
				stats[g.Classifier] = s
			}
			s.Add(g.Len())
		}
	}
	return stats, nil
}
