// Package validator registers custom validation tags with Gin's binding engine.
package validator

import (
	"fintrack/internal/allocation"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	lifeStages = map[string]bool{
		string(allocation.LifeStageStudent):               true,
		string(allocation.LifeStageEarlyCareer):           true,
		string(allocation.LifeStageFamily):                true,
		string(allocation.LifeStageApproachingRetirement): true,
	}
	livingSituations = map[string]bool{
		string(allocation.LivingWithParents):   true,
		string(allocation.LivingRentingShared): true,
		string(allocation.LivingRentingAlone):  true,
		string(allocation.LivingHomeowner):     true,
	}
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("budget_priority", validateBudgetPriority)
	_ = v.RegisterValidation("life_stage", validateLifeStage)
	_ = v.RegisterValidation("living_situation", validateLivingSituation)
	_ = v.RegisterValidation("budget_variant", validateBudgetVariant)
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateBudgetPriority(fl validator.FieldLevel) bool {
	return allocation.KnownPriority(allocation.Priority(fl.Field().String()))
}

func validateLifeStage(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || lifeStages[s]
}

func validateLivingSituation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || livingSituations[s]
}

func validateBudgetVariant(fl validator.FieldLevel) bool {
	switch allocation.Variant(fl.Field().String()) {
	case allocation.VariantMonthly, allocation.VariantAnnual:
		return true
	}
	return false
}

// KnownLifeStage reports whether s is empty or a recognised life stage.
func KnownLifeStage(s string) bool {
	return s == "" || lifeStages[s]
}

// KnownLivingSituation reports whether s is empty or a recognised living situation.
func KnownLivingSituation(s string) bool {
	return s == "" || livingSituations[s]
}
