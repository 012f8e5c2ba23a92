package allocation

import "math"

// Split is the share of income assigned to each bucket.
type Split struct {
	Essential float64 `json:"essential"`
	Lifestyle float64 `json:"lifestyle"`
	Savings   float64 `json:"savings"`
}

// Sum returns the total of the three shares.
func (s Split) Sum() float64 {
	return s.Essential + s.Lifestyle + s.Savings
}

// Of returns the share for a single (non-mixed) bucket.
func (s Split) Of(b Bucket) float64 {
	switch b {
	case BucketEssential:
		return s.Essential
	case BucketLifestyle:
		return s.Lifestyle
	case BucketSavings:
		return s.Savings
	}
	return 0
}

// normalizeTolerance is how far from 1.0 a split may drift before it is rescaled.
const normalizeTolerance = 0.01

var baseSplit = Split{Essential: 0.50, Lifestyle: 0.30, Savings: 0.20}

var prioritySplits = map[Priority]Split{
	PriorityBalanced:            baseSplit,
	PriorityIncreaseSavings:     {Essential: 0.45, Lifestyle: 0.25, Savings: 0.30},
	PriorityLiveWithinMeans:     {Essential: 0.50, Lifestyle: 0.35, Savings: 0.15},
	PriorityHealthyLifestyle:    {Essential: 0.45, Lifestyle: 0.35, Savings: 0.20},
	PriorityResponsibleSpending: {Essential: 0.50, Lifestyle: 0.25, Savings: 0.25},
}

var lifeStageSplits = map[LifeStage]Split{
	LifeStageStudent:               {Essential: 0.55, Lifestyle: 0.35, Savings: 0.10},
	LifeStageApproachingRetirement: {Essential: 0.40, Lifestyle: 0.20, Savings: 0.40},
}

var livingSituationSplits = map[LivingSituation]Split{
	LivingWithParents:   {Essential: 0.25, Lifestyle: 0.35, Savings: 0.40},
	LivingRentingShared: {Essential: 0.40, Lifestyle: 0.35, Savings: 0.25},
}

// KnownPriority reports whether p is empty or one of the named priorities.
func KnownPriority(p Priority) bool {
	if p == "" {
		return true
	}
	_, ok := prioritySplits[p]
	return ok
}

// ResolveSplit applies the priority, life-stage and living-situation overrides in
// that order, each replacing the whole split, then normalizes the result.
func ResolveSplit(priority Priority, profile Profile) (Split, error) {
	split := baseSplit

	if priority != "" {
		override, ok := prioritySplits[priority]
		if !ok {
			return Split{}, ErrUnknownPriority
		}
		split = override
	}
	if override, ok := lifeStageSplits[profile.LifeStage]; ok {
		split = override
	}
	if override, ok := livingSituationSplits[profile.LivingSituation]; ok {
		split = override
	}

	return normalize(split), nil
}

func normalize(s Split) Split {
	sum := s.Sum()
	if sum <= 0 || math.Abs(sum-1.0) <= normalizeTolerance {
		return s
	}
	return Split{
		Essential: s.Essential / sum,
		Lifestyle: s.Lifestyle / sum,
		Savings:   s.Savings / sum,
	}
}
