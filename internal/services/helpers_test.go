package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/events"
	"github.com/SAP-F-2025/learning-service/internal/testutil"
	"github.com/SAP-F-2025/learning-service/internal/validator"
)

type testServices struct {
	env       *testutil.Env
	publisher *events.MockEventPublisher
	manager   ServiceManager
}

func newTestServices(t *testing.T, withCache bool) *testServices {
	t.Helper()

	env := testutil.NewEnv(t, withCache)
	publisher := events.NewMockEventPublisher()
	manager := NewDefaultServiceManager(env.DB, env.Repo, publisher, testutil.Logger(t), validator.New())
	require.NoError(t, manager.Initialize(context.Background()))

	return &testServices{env: env, publisher: publisher, manager: manager}
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }
