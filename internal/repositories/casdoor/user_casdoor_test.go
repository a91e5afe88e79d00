package casdoor

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/models"
)

func TestMapRoleName(t *testing.T) {
	cases := map[string]models.UserRole{
		"teacher":       models.RoleTeacher,
		"Instructor":    models.RoleTeacher,
		"parent":        models.RoleParent,
		" Guardian ":    models.RoleParent,
		"ADMIN":         models.RoleAdmin,
		"administrator": models.RoleAdmin,
		"student":       models.RoleStudent,
		"something":     models.RoleStudent,
		"":              models.RoleStudent,
	}
	for name, want := range cases {
		assert.Equal(t, want, MapRoleName(name), name)
	}
}

func TestResolveRole(t *testing.T) {
	t.Run("admin flag wins", func(t *testing.T) {
		user := &casdoorsdk.User{
			IsAdmin: true,
			Roles:   []*casdoorsdk.Role{{Name: "teacher"}},
		}
		assert.Equal(t, models.RoleAdmin, ResolveRole(user))
	})

	t.Run("admin role wins over earlier roles", func(t *testing.T) {
		user := &casdoorsdk.User{
			Roles: []*casdoorsdk.Role{{Name: "parent"}, {Name: "admin"}},
		}
		assert.Equal(t, models.RoleAdmin, ResolveRole(user))
	})

	t.Run("first role is primary", func(t *testing.T) {
		user := &casdoorsdk.User{
			Roles: []*casdoorsdk.Role{{Name: "parent"}, {Name: "teacher"}},
		}
		assert.Equal(t, models.RoleParent, ResolveRole(user))
	})

	t.Run("falls back to user type", func(t *testing.T) {
		assert.Equal(t, models.RoleTeacher, ResolveRole(&casdoorsdk.User{Type: "teacher"}))
		assert.Equal(t, models.RoleStudent, ResolveRole(&casdoorsdk.User{Type: "normal-user"}))
	})
}

func TestCacheUser_StoresBothIndexes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	u := &UserCasdoor{cache: cache.NewCacheHelper(client, cache.UserCacheConfig.Prefix)}
	ctx := context.Background()
	user := &models.User{ID: "student-1", FullName: "An Le", Email: "An@Example.com", Role: models.RoleStudent}

	u.cacheUser(ctx, user)

	assert.True(t, mr.Exists("user:id:student-1"))
	assert.True(t, mr.Exists("user:email:an@example.com"))

	cached := u.getUserFromCache(ctx, "email:an@example.com")
	require.NotNil(t, cached)
	assert.Equal(t, "student-1", cached.ID)
}

func TestCacheUser_LogsFailedWrites(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })

	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	u := &UserCasdoor{cache: cache.NewCacheHelper(client, cache.UserCacheConfig.Prefix)}
	u.cacheUser(context.Background(), &models.User{ID: "parent-1", Email: "parent@example.com", Role: models.RoleParent})

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "Failed to cache user"), out)
	assert.Contains(t, out, "index=id")
	assert.Contains(t, out, "index=email")
}
