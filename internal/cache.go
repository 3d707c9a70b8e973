package internal

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/gnoswap-labs/typetrans/rule"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Cache keeps compiled rule sets keyed by their source and settings.
// Switching back and forth between profiles hits it.
type Cache struct {
	store *gocache.Cache
}

func NewCache(expiration, cleanupInterval time.Duration) *Cache {
	return &Cache{store: gocache.New(expiration, cleanupInterval)}
}

// Compile returns the cached rule set for source, compiling it on a miss.
// Rule sets with -f rules are never stored since the files may appear or
// change while the source does not.
func (c *Cache) Compile(source string, s Settings) *rule.RuleSet {
	key := cacheKey(source, s)
	if v, found := c.store.Get(key); found {
		if rs, ok := v.(*rule.RuleSet); ok {
			return rs
		}
	}

	rs := rule.Compile(source, s.options()...)
	if !rs.HasImports {
		c.store.Set(key, rs, gocache.DefaultExpiration)
	}
	return rs
}

// Len returns the number of cached rule sets, expired ones included.
func (c *Cache) Len() int { return c.store.ItemCount() }

// Flush drops every cached rule set.
func (c *Cache) Flush() { c.store.Flush() }

func cacheKey(source string, s Settings) string {
	h := md5.New()
	h.Write([]byte(strconv.Itoa(int(s.Encoding))))
	h.Write([]byte{0})
	h.Write([]byte(s.BaseDir))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(s.ValidateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}
