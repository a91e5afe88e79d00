package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/testutil"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

func TestServiceManager_GettersRequireInitialize(t *testing.T) {
	env := testutil.NewEnv(t, false)
	manager := NewDefaultServiceManager(env.DB, env.Repo, nil, testutil.Logger(t), validator.New())

	assert.PanicsWithValue(t, "service manager not initialized", func() { manager.Quiz() })
	assert.Error(t, manager.HealthCheck(context.Background()))

	require.NoError(t, manager.Initialize(context.Background()))
	require.NoError(t, manager.Initialize(context.Background()))
	assert.NotNil(t, manager.Quiz())
	assert.NoError(t, manager.HealthCheck(context.Background()))

	require.NoError(t, manager.Shutdown(context.Background()))
	assert.Error(t, manager.HealthCheck(context.Background()))
}

func TestServiceManager_RejectsInvalidConfig(t *testing.T) {
	env := testutil.NewEnv(t, false)

	config := DefaultServiceManagerConfig()
	config.DefaultTimeout = 0
	manager := NewServiceManager(env.DB, env.Repo, nil, testutil.Logger(t), validator.New(), config)
	assert.Error(t, manager.Initialize(context.Background()))

	config = DefaultServiceManagerConfig()
	config.Progress.CacheTTL = -time.Second
	assert.Error(t, config.Validate())
}

func TestServiceManager_WithTimeout(t *testing.T) {
	ts := newTestServices(t, false)

	ctx, cancel := ts.manager.(*serviceManager).WithTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, time.Second)
}
