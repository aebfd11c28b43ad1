package commands

import (
	"errors"
	"strings"

	"shipcalc/internal/pkg/errs"
	"shipcalc/internal/pkg/guard"
)

var ErrRefreshCatalogCommandIsNotConstructed = errors.New(
	"RefreshCatalogCommand must be created via NewRefreshCatalogCommand constructor",
)

// Refresh triggers, recorded in logs.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// RefreshCatalogCommand asks for the catalog to be reloaded from storage,
// validated and swapped in.
//
// Example:
//
//	cmd, err := NewRefreshCatalogCommand(TriggerSchedule)
//	if err != nil {
//	    return err
//	}
//	summary, err := handler.Handle(ctx, cmd)
type RefreshCatalogCommand struct {
	trigger string
	guard   guard.ConstructorGuard
}

func NewRefreshCatalogCommand(trigger string) (RefreshCatalogCommand, error) {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return RefreshCatalogCommand{}, errs.NewValueIsRequiredError("trigger")
	}
	return RefreshCatalogCommand{trigger: trigger, guard: guard.NewConstructorGuard()}, nil
}

func (c RefreshCatalogCommand) Validate() error {
	return c.guard.Validate(ErrRefreshCatalogCommandIsNotConstructed)
}

func (c RefreshCatalogCommand) Trigger() string {
	return c.trigger
}
