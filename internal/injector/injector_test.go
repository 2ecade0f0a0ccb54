package injector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermisquasar/Filling-the-Void/internal/config"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
)

func TestInitializeRuntime(t *testing.T) {
	cfg := config.Default()
	cfg.Runner.Duration = 1
	cfg.Telemetry.Enabled = true

	rt, cleanup, err := InitializeRuntime(&cfg, log.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.True(t, rt.TelemetryEnabled())
	final, err := rt.Runner.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1, final.Time, cfg.Runner.FixedStep)

	msg, err := rt.Hub.Latest()
	require.NoError(t, err)
	assert.NotNil(t, msg, "frames reach the hub")
	require.NoError(t, rt.Hub.Close())
}

func TestInitializeRuntimeRejectsBadScript(t *testing.T) {
	cfg := config.Default()
	cfg.Script = []config.ScriptStep{{At: 1, Command: "teleport"}}

	_, _, err := InitializeRuntime(&cfg, log.NewNop())
	assert.Error(t, err)
}
