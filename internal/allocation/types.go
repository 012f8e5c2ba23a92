// Package allocation turns an income figure and a set of category selections into
// a recommended list of budget line items.
//
// The engine is a pure function of the rule catalog and its inputs: it never
// touches storage and produces the same output for the same request.
package allocation

import (
	"errors"
	"math"
)

// Bucket is a top-level spending-purpose partition of income.
type Bucket string

const (
	BucketEssential Bucket = "essential"
	BucketLifestyle Bucket = "lifestyle"
	BucketSavings   Bucket = "savings"
	// BucketMixed draws from both the essential and the lifestyle buckets.
	BucketMixed Bucket = "mixed"
)

// Priority is the user's stated financial priority.
type Priority string

const (
	PriorityBalanced            Priority = "balanced"
	PriorityIncreaseSavings     Priority = "increase-savings"
	PriorityLiveWithinMeans     Priority = "live-within-means"
	PriorityHealthyLifestyle    Priority = "healthy-lifestyle"
	PriorityResponsibleSpending Priority = "responsible-spending"
)

// LifeStage describes where the user is in life. Only some stages change the split.
type LifeStage string

const (
	LifeStageStudent               LifeStage = "student"
	LifeStageEarlyCareer           LifeStage = "early-career"
	LifeStageFamily                LifeStage = "family"
	LifeStageApproachingRetirement LifeStage = "approaching-retirement"
)

// LivingSituation describes the user's housing arrangement.
type LivingSituation string

const (
	LivingWithParents   LivingSituation = "with-parents"
	LivingRentingShared LivingSituation = "renting-shared"
	LivingRentingAlone  LivingSituation = "renting-alone"
	LivingHomeowner     LivingSituation = "homeowner"
)

// Profile holds the optional demographic inputs.
type Profile struct {
	LifeStage       LifeStage       `json:"life_stage,omitempty"`
	LivingSituation LivingSituation `json:"living_situation,omitempty"`
}

// Variant selects which income figure the engine works with and how it fits the
// final plan to that income.
type Variant string

const (
	VariantMonthly Variant = "monthly"
	VariantAnnual  Variant = "annual"
)

// FitPolicy is the final scaling step applied after bucket correction.
type FitPolicy int

const (
	// FitExact rescales every item so the plan sums to exactly the income.
	FitExact FitPolicy = iota
	// FitTolerance only rescales (to 98% of income) when the plan exceeds 102% of income.
	FitTolerance
)

// Policy returns the fit policy used by the variant.
func (v Variant) Policy() FitPolicy {
	if v == VariantAnnual {
		return FitTolerance
	}
	return FitExact
}

// CategoryChoice is the user's selection for a single category.
type CategoryChoice struct {
	Selected      bool            `json:"selected"`
	Subcategories map[string]bool `json:"subcategories"`
}

// Selection maps category names to the user's choices.
type Selection map[string]CategoryChoice

// Request is the input of Engine.Allocate. Income is expressed in minor currency
// units for the period the variant implies (monthly or annual).
type Request struct {
	Income    int64
	Variant   Variant
	Priority  Priority
	Profile   Profile
	Selection Selection
}

// LineItem is one recommended category/subcategory allocation.
type LineItem struct {
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory"`
	MonthlyBudget int64  `json:"monthly_budget"`
	AnnualBudget  int64  `json:"annual_budget"`
	IsEssential   bool   `json:"is_essential"`
	Bucket        Bucket `json:"bucket"`
}

// Breakdown is the amount of income assigned to each bucket.
type Breakdown struct {
	Essential int64 `json:"essential"`
	Lifestyle int64 `json:"lifestyle"`
	Savings   int64 `json:"savings"`
}

// CorrectionStage names the step that rescaled the plan.
type CorrectionStage string

const (
	StageBucket    CorrectionStage = "bucket"
	StageTolerance CorrectionStage = "tolerance"
)

// Correction records a rescale applied because the rules over-allocated.
type Correction struct {
	Stage  CorrectionStage `json:"stage"`
	Bucket Bucket          `json:"bucket,omitempty"`
	Usage  float64         `json:"usage"`
	Factor float64         `json:"factor"`
}

// Result is the output of Engine.Allocate.
type Result struct {
	LineItems      []LineItem   `json:"line_items"`
	Breakdown      Breakdown    `json:"breakdown"`
	Percentages    Split        `json:"percentages"`
	TotalAllocated int64        `json:"total_allocated"`
	Corrections    []Correction `json:"corrections,omitempty"`
}

// MaxIncome is the largest income the engine accepts. Monthly figures are
// multiplied by twelve, so anything larger would overflow int64.
const MaxIncome int64 = math.MaxInt64 / monthsPerYear

// ValidIncome reports whether income is positive and at most MaxIncome.
func ValidIncome(income int64) bool {
	return income > 0 && income <= MaxIncome
}

var (
	// ErrNonPositiveIncome is returned when the income is zero or negative.
	ErrNonPositiveIncome = errors.New("allocation: income must be greater than zero")
	// ErrIncomeTooLarge is returned when the income exceeds MaxIncome.
	ErrIncomeTooLarge = errors.New("allocation: income exceeds the supported maximum")
	// ErrUnknownPriority is returned for a priority outside the known set.
	ErrUnknownPriority = errors.New("allocation: unknown priority")
)
