package event

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	ModuleActivatedTopic   = "module.activated"
	ModuleDeactivatedTopic = "module.deactivated"
)

// ModuleToggledEvent is the payload published after a successful toggle.
type ModuleToggledEvent struct {
	TenantID   string    `json:"tenant_id"`
	ModuleID   string    `json:"module_id"`
	ModuleKey  string    `json:"module_key"`
	ModuleName string    `json:"module_name"`
	Active     bool      `json:"active"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Topic returns the event topic for the new state.
func (e ModuleToggledEvent) Topic() string {
	if e.Active {
		return ModuleActivatedTopic
	}
	return ModuleDeactivatedTopic
}

// Publisher hands domain events to the external event bus. Emission is
// best-effort: a failed publish never undoes the state transition it reports.
type Publisher interface {
	PublishModuleToggled(ctx context.Context, evt ModuleToggledEvent) error
}

// DomainEvent is the outbox row. Undelivered events stay with
// published=false for an external relay to drain.
type DomainEvent struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	TenantID  snowflake.ID   `gorm:"column:tenant_id;not null;index:ix_domain_events_tenant"`
	EventType string         `gorm:"type:text;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	Published bool           `gorm:"not null;default:false"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DomainEvent) TableName() string { return "domain_events" }
