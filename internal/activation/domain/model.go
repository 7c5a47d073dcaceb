package domain

import "time"

// ModuleRef identifies one catalog module in error payloads and events.
type ModuleRef struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type ToggleRequest struct {
	TenantID  string
	ModuleKey string
	ActorID   string
}

type ToggleResult struct {
	ModuleID      string    `json:"module_id"`
	ModuleKey     string    `json:"module_key"`
	ModuleName    string    `json:"module_name"`
	PreviousState bool      `json:"previous_state"`
	NewState      bool      `json:"new_state"`
	ToggledAt     time.Time `json:"toggled_at"`
}

// ModuleView is one catalog module annotated with the tenant's state and the
// resolver's computed flags, ready for presentation.
type ModuleView struct {
	ID           string  `json:"id"`
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	Category     string  `json:"category"`
	DisplayOrder int     `json:"display_order"`
	Enabled      bool    `json:"enabled"`

	Subscribed         bool     `json:"subscribed"`
	IsActive           bool     `json:"is_active"`
	CanActivate        bool     `json:"can_activate"`
	CanDeactivate      bool     `json:"can_deactivate"`
	UnmetDependencies  []string `json:"unmet_dependencies"`
	BlockingDependents []string `json:"blocking_dependents"`
}
