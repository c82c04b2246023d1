package feature

import "sort"

// Bucket groups classified features that share a category. Buckets are only
// emitted when they hold at least one feature.
type Bucket struct {
	Name        string
	Description string
	Features    []Classified
}

// Summary is a single-pass fold over every classified feature.
type Summary struct {
	TotalFeatures       int
	TotalEstimatedHours int
	Priorities          PriorityBreakdown
	Complexities        ComplexityBreakdown
}

type PriorityBreakdown struct {
	High   int
	Medium int
	Low    int
}

type ComplexityBreakdown struct {
	Simple   int
	Moderate int
	Complex  int
}

// Aggregate groups features into category buckets following rule-table order
// (domain importance, not alphabet), dropping empty buckets, and computes
// the portfolio summary. The input slice is never mutated; each bucket holds
// a fresh copy of its members.
func Aggregate(features []Classified) ([]Bucket, Summary) {
	var buckets []Bucket
	for _, rule := range categoryRules {
		var members []Classified
		for _, f := range features {
			if f.Category == rule.name {
				members = append(members, f)
			}
		}
		if len(members) == 0 {
			continue
		}
		sortBucket(members)
		buckets = append(buckets, Bucket{
			Name:        rule.name,
			Description: rule.description,
			Features:    members,
		})
	}
	return buckets, Summarize(features)
}

// Summarize folds all classified features into portfolio-level statistics.
func Summarize(features []Classified) Summary {
	var s Summary
	for _, f := range features {
		s.TotalFeatures++
		s.TotalEstimatedHours += f.EstimatedHours

		switch f.Priority {
		case PriorityHigh:
			s.Priorities.High++
		case PriorityLow:
			s.Priorities.Low++
		default:
			s.Priorities.Medium++
		}

		switch f.Complexity {
		case ComplexitySimple:
			s.Complexities.Simple++
		case ComplexityComplex:
			s.Complexities.Complex++
		default:
			s.Complexities.Moderate++
		}
	}
	return s
}

// sortBucket orders features by priority (high first) then complexity
// (complex first). The sort is stable so parse order breaks ties.
func sortBucket(fs []Classified) {
	sort.SliceStable(fs, func(i, j int) bool {
		pi, pj := priorityRank(fs[i].Priority), priorityRank(fs[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return complexityRank(fs[i].Complexity) < complexityRank(fs[j].Complexity)
	})
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

func complexityRank(c Complexity) int {
	switch c {
	case ComplexityComplex:
		return 0
	case ComplexitySimple:
		return 2
	default:
		return 1
	}
}
