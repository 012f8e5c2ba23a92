package services

import (
	"errors"

	"fintrack/internal/allocation"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/validator"
)

// plannerService runs the allocation engine for budget recommendations.
type plannerService struct {
	engine *allocation.Engine
}

// NewPlannerService creates a PlannerServicer. A nil engine uses the default catalog.
func NewPlannerService(engine *allocation.Engine) PlannerServicer {
	if engine == nil {
		engine = allocation.NewEngine(nil)
	}
	return &plannerService{engine: engine}
}

// Recommend validates the input, runs the engine and logs any over-allocation
// corrections it applied.
func (s *plannerService) Recommend(in RecommendationInput) (*allocation.Result, error) {
	if !allocation.ValidIncome(in.Income) {
		return nil, apperrors.ErrInvalidIncome
	}
	if !allocation.KnownPriority(in.Priority) {
		return nil, apperrors.ErrUnknownPriority
	}
	if !validator.KnownLifeStage(string(in.Profile.LifeStage)) || !validator.KnownLivingSituation(string(in.Profile.LivingSituation)) {
		return nil, apperrors.ErrUnknownProfile
	}
	if in.Variant == "" {
		in.Variant = allocation.VariantMonthly
	}

	result, err := s.engine.Allocate(allocation.Request{
		Income:    in.Income,
		Variant:   in.Variant,
		Priority:  in.Priority,
		Profile:   in.Profile,
		Selection: in.Selection,
	})
	if err != nil {
		switch {
		case errors.Is(err, allocation.ErrNonPositiveIncome), errors.Is(err, allocation.ErrIncomeTooLarge):
			return nil, apperrors.ErrInvalidIncome
		case errors.Is(err, allocation.ErrUnknownPriority):
			return nil, apperrors.ErrUnknownPriority
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, c := range result.Corrections {
		logger.Get().Warnw("allocation over-allocated, scaled down",
			"variant", string(in.Variant),
			"stage", string(c.Stage),
			"bucket", string(c.Bucket),
			"usage", c.Usage,
			"factor", c.Factor,
		)
	}

	return result, nil
}

// Rules returns the rule catalog the engine allocates with.
func (s *plannerService) Rules() []allocation.Rule {
	return s.engine.Catalog().Rules()
}

// lineItemsFromResult converts engine output into unsaved budget line items.
func lineItemsFromResult(result *allocation.Result, frequency string) []models.BudgetLineItem {
	items := make([]models.BudgetLineItem, len(result.LineItems))
	for i, li := range result.LineItems {
		items[i] = models.BudgetLineItem{
			Position:      i,
			Category:      li.Category,
			Subcategory:   li.Subcategory,
			MonthlyBudget: li.MonthlyBudget,
			AnnualBudget:  li.AnnualBudget,
			IsEssential:   li.IsEssential,
			Frequency:     frequency,
		}
	}
	return items
}
