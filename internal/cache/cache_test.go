package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseCache 对任意实现执行相同的读写用例
func exerciseCache(t *testing.T, c Cache) {
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key1", "value1", 0))
	val, found, err := c.Get(ctx, "key1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value1", val)

	val, found, err = c.Get(ctx, "non-existent")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	require.NoError(t, c.Set(ctx, "to-delete", "x", 0))
	require.NoError(t, c.Delete(ctx, "to-delete"))
	_, found, err = c.Get(ctx, "to-delete")
	assert.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "key2", "value2", 0))
	require.NoError(t, c.Clear(ctx))
	_, found, err = c.Get(ctx, "key2")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache(t *testing.T) {
	c, err := NewMemoryCache(Config{
		Prefix:          "test",
		DefaultTTL:      time.Second * 2,
		CleanupInterval: time.Second,
	})
	require.NoError(t, err)
	exerciseCache(t, c)

	// 过期
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "expire-soon", "temp", 50*time.Millisecond))
	time.Sleep(120 * time.Millisecond)
	_, found, err := c.Get(ctx, "expire-soon")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheClearKeepsOtherNamespaces(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(Config{Prefix: "a"})
	require.NoError(t, err)
	mc := c.(*MemoryCache)
	mc.cache.Set("b:other", "keep", 0)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Clear(ctx))

	_, ok := mc.cache.Get("b:other")
	assert.True(t, ok)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(Config{
		Type:       "redis",
		Prefix:     "test",
		RedisAddr:  mr.Addr(),
		DefaultTTL: time.Minute,
	})
	require.NoError(t, err)
	defer c.(*RedisCache).Close()

	exerciseCache(t, c)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "expire-soon", "temp", time.Second))
	assert.True(t, mr.Exists("test:expire-soon"))
	mr.FastForward(2 * time.Second)
	_, found, err := c.Get(ctx, "expire-soon")
	assert.NoError(t, err)
	assert.False(t, found)

	// Clear 不影响其他前缀
	require.NoError(t, mr.Set("other:key", "keep"))
	require.NoError(t, c.Set(ctx, "mine", "v", 0))
	require.NoError(t, c.Clear(ctx))
	assert.True(t, mr.Exists("other:key"))
	assert.False(t, mr.Exists("test:mine"))
}

func TestRedisCacheUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(Config{RedisAddr: addr})
	assert.Error(t, err)
}

func TestCacheFactory(t *testing.T) {
	memCache, err := NewCache(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, memCache)

	mr := miniredis.RunT(t)
	redisCache, err := NewCache(Config{Type: "redis", RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, redisCache)

	// 未知类型退回内存缓存
	unknown, err := NewCache(Config{Type: "unknown-type"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, unknown)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(DefaultConfig())
	require.NoError(t, err)

	type payload struct {
		Summary string   `json:"summary"`
		Core    []string `json:"core"`
	}
	in := payload{Summary: "摘要。", Core: []string{"句子。"}}
	require.NoError(t, SetJSON(ctx, c, "p", in, 0))

	var out payload
	found, err := GetJSON(ctx, c, "p", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	found, err = GetJSON(ctx, c, "missing", &out)
	assert.NoError(t, err)
	assert.False(t, found)

	// 损坏的数据会被删除
	require.NoError(t, c.Set(ctx, "bad", "{not json", 0))
	found, err = GetJSON(ctx, c, "bad", &out)
	assert.Error(t, err)
	assert.False(t, found)
	_, exists, _ := c.Get(ctx, "bad")
	assert.False(t, exists)
}

func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, "prefix", GenerateCacheKey("prefix"))
	assert.Equal(t, "prefix:part1", GenerateCacheKey("prefix", "part1"))
	assert.Equal(t, "prefix:part1:part2:part3", GenerateCacheKey("prefix", "part1", "part2", "part3"))
}

func TestContentHash(t *testing.T) {
	a := ContentHash("算法课程")
	assert.Len(t, a, 64)
	assert.Equal(t, a, ContentHash("算法课程"))
	assert.NotEqual(t, a, ContentHash("数据结构"))
}
