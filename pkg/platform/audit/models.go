package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose so that
// sinks can apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers changes to client records.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers privileged access and abuse signals.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine maintenance such as seeding.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	// Action is one of the AuditEvent values.
	Action string
	// Subject is the affected entity: a party key, or a collection name for
	// gateway operations.
	Subject string
	// ActorID is the authenticated caller, or "anonymous".
	ActorID   string
	Reason    string
	RequestID string
	ClientIP  string
	// Details carries operation counts and filters; values must be JSON-encodable.
	Details map[string]any
}

type AuditEvent string

const (
	// Client events
	EventClientCreated  AuditEvent = "client_created"
	EventClientDeleted  AuditEvent = "client_deleted"
	EventAddressDeleted AuditEvent = "address_deleted"

	// Maintenance events
	EventSeedApplied AuditEvent = "seed_applied"

	// Gateway events
	EventAdminSetApplied    AuditEvent = "admin_set_applied"
	EventAdminUnsetApplied  AuditEvent = "admin_unset_applied"
	EventAdminDeleteApplied AuditEvent = "admin_delete_applied"
	EventAdminRawAccess     AuditEvent = "admin_raw_access"

	// Rate limit events
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventClientCreated:  CategoryCompliance,
	EventClientDeleted:  CategoryCompliance,
	EventAddressDeleted: CategoryCompliance,

	EventAdminSetApplied:    CategorySecurity,
	EventAdminUnsetApplied:  CategorySecurity,
	EventAdminDeleteApplied: CategorySecurity,
	EventAdminRawAccess:     CategorySecurity,
	EventRateLimitExceeded:  CategorySecurity,

	EventSeedApplied: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
