// Package audit records what the dossier service did and for whom. Events are
// published asynchronously and never fail the request that produced them.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different sampling, retention, and routing per category.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: who was
	// profiled, from which sources, with what outcome. Never sampled.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. Sampled under load.
	CategoryOperations EventCategory = "operations"
)

// Action names an auditable occurrence.
type Action string

const (
	// ActionDossierRequested records an accepted build request.
	ActionDossierRequested Action = "dossier.requested"

	// ActionDossierBuilt records a completed build with its resolution outcome.
	ActionDossierBuilt Action = "dossier.built"

	// ActionCollaboratorFailed records a degraded upstream call.
	ActionCollaboratorFailed Action = "collaborator.failed"
)

var actionCategories = map[Action]EventCategory{
	ActionDossierRequested:   CategoryOperations,
	ActionDossierBuilt:       CategoryCompliance,
	ActionCollaboratorFailed: CategoryOperations,
}

// Category returns the category for this action. Unknown actions default to
// operations so ad hoc events never gain compliance guarantees by accident.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one audit record. Transport-agnostic so sinks can fan out.
type Event struct {
	ID        string            `json:"id"`
	Category  EventCategory     `json:"category"`
	Action    Action            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// NewEvent builds an event with a fresh ID. The publisher stamps the
// timestamp and request ID from context when they are zero.
func NewEvent(action Action, subject string, attrs map[string]string) Event {
	return Event{
		ID:       uuid.NewString(),
		Category: action.Category(),
		Action:   action,
		Subject:  subject,
		Attrs:    attrs,
	}
}
