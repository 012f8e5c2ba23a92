package models

import (
	"time"

	"fintrack/internal/allocation"
)

// User is an account holder. Budgets, plans and transactions are scoped to it.
type User struct {
	Base
	Email       string           `gorm:"uniqueIndex;not null" json:"email"`
	Password    string           `gorm:"not null" json:"-"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	IsActive    bool             `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	Planning    PlanningDefaults `gorm:"embedded;embeddedPrefix:planning_" json:"planning"`
}

// PlanningDefaults fill in the priority and profile of a recommendation when
// the request leaves them empty.
type PlanningDefaults struct {
	Priority        allocation.Priority        `gorm:"size:32" json:"priority,omitempty"`
	LifeStage       allocation.LifeStage       `gorm:"size:32" json:"life_stage,omitempty"`
	LivingSituation allocation.LivingSituation `gorm:"size:32" json:"living_situation,omitempty"`
}

// Apply returns priority and profile with every empty field taken from d.
func (d PlanningDefaults) Apply(priority allocation.Priority, profile allocation.Profile) (allocation.Priority, allocation.Profile) {
	if priority == "" {
		priority = d.Priority
	}
	if profile.LifeStage == "" {
		profile.LifeStage = d.LifeStage
	}
	if profile.LivingSituation == "" {
		profile.LivingSituation = d.LivingSituation
	}
	return priority, profile
}
