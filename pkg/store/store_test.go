package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socs/socs/pkg/engine"
)

// setupTestRedis 创建测试用的Redis客户端
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return client, mr
}

func sampleConfig() *engine.GameConfig {
	cfg := engine.BlankConfig()
	cfg.InitialPhase = "main"
	cfg.Phases["main"] = engine.Phase{Evaluate: engine.Empty()}
	cfg.Numbers = []string{"score"}
	return cfg
}

func TestStore_SaveLoad(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	st := New(client, WithPrefix("test"))

	t.Run("save then load round trips", func(t *testing.T) {
		err := st.Save(ctx, "r1", "whist", sampleConfig())
		require.NoError(t, err)

		cfg, err := st.Load(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "main", cfg.InitialPhase)
		assert.Equal(t, []string{"score"}, cfg.Numbers)
		assert.Len(t, cfg.AllowedRanks, 13)
	})

	t.Run("load missing ruleset", func(t *testing.T) {
		_, err := st.Load(ctx, "nope")
		assert.True(t, errors.Is(err, ErrRulesetNotFound))
	})

	t.Run("load hits cache after first read", func(t *testing.T) {
		err := st.Save(ctx, "r2", "bridge", sampleConfig())
		require.NoError(t, err)

		// 直接从后端删掉，缓存里仍能读到
		mr.FlushAll()
		cfg, err := st.Load(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, "main", cfg.InitialPhase)
	})

	t.Run("invalid payload", func(t *testing.T) {
		require.NoError(t, client.HSet(ctx, "test:ruleset:data", "bad", "not an envelope").Err())
		_, err := st.Load(ctx, "bad")
		assert.True(t, errors.Is(err, ErrInvalidRuleset))
	})
}

func TestStore_NameList(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	st := New(client, WithPrefix("test"))

	require.NoError(t, st.Save(ctx, "r1", "whist", sampleConfig()))
	require.NoError(t, st.Save(ctx, "r2", "hearts", sampleConfig()))

	t.Run("name peek", func(t *testing.T) {
		name, err := st.Name(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "whist", name)
	})

	t.Run("name of missing ruleset", func(t *testing.T) {
		_, err := st.Name(ctx, "nope")
		assert.True(t, errors.Is(err, ErrRulesetNotFound))
	})

	t.Run("list returns metadata", func(t *testing.T) {
		infos, err := st.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)

		byID := make(map[string]Info, len(infos))
		for _, info := range infos {
			byID[info.ID] = info
		}
		assert.Equal(t, "whist", byID["r1"].Name)
		assert.Equal(t, "hearts", byID["r2"].Name)
		assert.InDelta(t, time.Now().Unix(), byID["r1"].SavedAt.Unix(), 5)
	})
}

func TestStore_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	st := New(client, WithPrefix("test"))

	require.NoError(t, st.Save(ctx, "r1", "whist", sampleConfig()))

	t.Run("delete removes backend and cache", func(t *testing.T) {
		require.NoError(t, st.Delete(ctx, "r1"))

		_, err := st.Load(ctx, "r1")
		assert.True(t, errors.Is(err, ErrRulesetNotFound))
	})

	t.Run("delete missing ruleset", func(t *testing.T) {
		assert.NoError(t, st.Delete(ctx, "nope"))
	})
}

func TestStore_Options(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	t.Run("custom prefix", func(t *testing.T) {
		st := New(client, WithPrefix("myapp"))
		require.NoError(t, st.Save(ctx, "r1", "whist", sampleConfig()))

		keys := mr.Keys()
		found := false
		for _, key := range keys {
			if len(key) > 6 && key[:6] == "myapp:" {
				found = true
				break
			}
		}
		assert.True(t, found, "should have keys with custom prefix")
	})

	t.Run("expired cache falls back to redis", func(t *testing.T) {
		st := New(client, WithPrefix("test"), WithCacheTTL(time.Millisecond*10))
		require.NoError(t, st.Save(ctx, "r1", "whist", sampleConfig()))

		time.Sleep(time.Millisecond * 50)
		cfg, err := st.Load(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "main", cfg.InitialPhase)
	})
}
