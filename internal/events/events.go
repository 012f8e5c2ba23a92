// Package events publishes budget lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Type is the kind of budget lifecycle event. It doubles as the routing key.
type Type string

const (
	BudgetSaved   Type = "budget.saved"
	BudgetSynced  Type = "budget.synced"
	BudgetDeleted Type = "budget.deleted"
	PlanUpdated   Type = "plan.updated"
)

// Budget kinds carried on an Event.
const (
	KindMonthly = "monthly"
	KindAnnual  = "annual"
	KindPlan    = "plan"
)

// Event describes a change to one of a user's budgets or plans. Month is zero
// for annual budgets and plans.
type Event struct {
	Type       Type      `json:"type"`
	Kind       string    `json:"kind"`
	UserID     string    `json:"user_id"`
	Year       int       `json:"year"`
	Month      int       `json:"month,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with the current time.
func New(t Type, kind, userID string, year, month int) Event {
	return Event{
		Type:       t,
		Kind:       kind,
		UserID:     userID,
		Year:       year,
		Month:      month,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON encodes the event.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
