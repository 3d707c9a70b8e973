package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gnoswap-labs/typetrans/rule"
)

func TestCache(t *testing.T) {
	t.Parallel()

	cache := NewCache(time.Minute, time.Minute)
	source := "'a|' -> 'b'"

	t.Run("hit returns the same rule set", func(t *testing.T) {
		first := cache.Compile(source, Settings{})
		second := cache.Compile(source, Settings{})
		assert.Same(t, first, second)
	})

	t.Run("settings are part of the key", func(t *testing.T) {
		utf8Set := cache.Compile(source, Settings{Encoding: rule.UTF8})
		utf16Set := cache.Compile(source, Settings{Encoding: rule.UTF16})
		assert.NotSame(t, utf8Set, utf16Set)
		assert.Equal(t, rule.UTF16, utf16Set.Encoding)

		other := cache.Compile(source, Settings{BaseDir: "elsewhere"})
		assert.NotSame(t, utf8Set, other)
	})

	t.Run("flush", func(t *testing.T) {
		require.NotZero(t, cache.Len())
		cache.Flush()
		assert.Zero(t, cache.Len())
	})
}

func TestCacheSkipsImports(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "snippet.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	cache := NewCache(time.Minute, time.Minute)
	settings := Settings{BaseDir: dir}
	source := "'s|' -f 'snippet.txt'"

	first := cache.Compile(source, settings)
	require.True(t, first.Valid(), first.Errors())
	assert.Equal(t, "v1", first.Rules[0].Replace)
	assert.Zero(t, cache.Len())

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	second := cache.Compile(source, settings)
	assert.Equal(t, "v2", second.Rules[0].Replace, "imported files are read again")
}

func TestCacheRetriesMissingImport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	engine := NewEngine(zaptest.NewLogger(t), Settings{BaseDir: dir})
	source := "'sig|' -f 'sig.txt'"

	first := engine.Load(source)
	require.Equal(t, []string{"line 1: file not found: sig.txt"}, first.Errors())
	assert.Zero(t, engine.cache.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sig.txt"), []byte("regards"), 0o644))
	second := engine.Load(source)
	require.True(t, second.Valid(), second.Errors())
	assert.Equal(t, "regards", second.Rules[0].Replace)
}

func TestCacheValidateOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snippet.txt"), []byte("body"), 0o644))

	cache := NewCache(time.Minute, time.Minute)
	source := "'s|' -f 'snippet.txt'"

	checked := cache.Compile(source, Settings{BaseDir: dir, ValidateOnly: true})
	require.True(t, checked.Valid(), checked.Errors())
	assert.Equal(t, "", checked.Rules[0].Replace, "validation does not read the file")

	loaded := cache.Compile(source, Settings{BaseDir: dir})
	require.True(t, loaded.Valid(), loaded.Errors())
	assert.Equal(t, "body", loaded.Rules[0].Replace)

	missing := cache.Compile("'s|' -f 'nope.txt'", Settings{BaseDir: dir, ValidateOnly: true})
	assert.Equal(t, []string{"line 1: file not found: nope.txt"}, missing.Errors())
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()

	cache := NewCache(10*time.Millisecond, time.Hour)
	first := cache.Compile("'a|' -> 'b'", Settings{})
	time.Sleep(20 * time.Millisecond)
	second := cache.Compile("'a|' -> 'b'", Settings{})
	assert.NotSame(t, first, second)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	a := cacheKey("x", Settings{})
	assert.Len(t, a, 32)
	assert.Equal(t, a, cacheKey("x", Settings{}))
	assert.NotEqual(t, a, cacheKey("y", Settings{}))
	assert.NotEqual(t, cacheKey("ab", Settings{BaseDir: "c"}), cacheKey("b", Settings{BaseDir: "ca"}))
	assert.NotEqual(t, a, cacheKey("x", Settings{ValidateOnly: true}))
}
