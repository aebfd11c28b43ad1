package commands_test

import (
	"testing"

	"shipcalc/internal/core/application/usecases/commands"
	"shipcalc/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshCatalogCommand(t *testing.T) {
	cmd, err := commands.NewRefreshCatalogCommand(" schedule ")
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, commands.TriggerSchedule, cmd.Trigger())

	_, err = commands.NewRefreshCatalogCommand("  ")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestRefreshCatalogCommand_NotConstructedViaConstructor(t *testing.T) {
	cmd := commands.RefreshCatalogCommand{}
	err := cmd.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrRefreshCatalogCommandIsNotConstructed)
}
