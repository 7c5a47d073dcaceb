package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidModuleKey    = errors.New("invalid_module_key")
	ErrModuleNotFound      = errors.New("module_not_found")
	ErrNotSubscribed       = errors.New("not_subscribed")
	ErrConcurrencyConflict = errors.New("concurrency_conflict")
	ErrStoreUnavailable    = errors.New("store_unavailable")
)

// UnmetDependenciesError rejects an activation and names every required
// module that is not yet active. The names are a functional contract: the
// caller presents them verbatim.
type UnmetDependenciesError struct {
	Module  ModuleRef
	Missing []ModuleRef
}

func (e *UnmetDependenciesError) Error() string {
	return fmt.Sprintf("activation of %s requires: %s", e.Module.Key, joinNames(e.Missing))
}

// BlockingDependentsError rejects a deactivation and names every active
// module that still depends on the target.
type BlockingDependentsError struct {
	Module   ModuleRef
	Blocking []ModuleRef
}

func (e *BlockingDependentsError) Error() string {
	return fmt.Sprintf("deactivation of %s blocked by: %s", e.Module.Key, joinNames(e.Blocking))
}

func joinNames(refs []ModuleRef) string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return strings.Join(names, ", ")
}

// Names returns the module names in presentation order.
func Names(refs []ModuleRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return names
}
