// cache.go - 编译结果缓存
//
// 按路径缓存最近一次的编译结果，内容摘要相同时直接复用。
// 超过容量时按最近访问时间淘汰。

package compiler

import (
	"encoding/hex"
	"sort"
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/crypto/blake2b"
)

// DefaultCacheEntries 默认缓存条目数
const DefaultCacheEntries = 256

// Cache 编译结果缓存，可并发使用
type Cache struct {
	compiler   *Compiler
	maxEntries int

	mu      sync.Mutex
	entries map[string]*cacheEntry
	clock   uint64 // 访问计数，用作最近访问时间

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	digest   string
	result   *Result
	accessed uint64
}

// CacheStats 缓存统计信息
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// NewCache 创建缓存；maxEntries <= 0 时使用默认容量
func NewCache(c *Compiler, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	return &Cache{
		compiler:   c,
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
	}
}

// Compile 编译 source；path 下缓存的内容摘要相同时返回缓存结果，hit 为 true
func (cc *Cache) Compile(source, path string) (result *Result, hit bool) {
	digest := Digest(source)

	cc.mu.Lock()
	if e, ok := cc.entries[path]; ok && e.digest == digest {
		cc.clock++
		e.accessed = cc.clock
		cc.mu.Unlock()
		cc.hits.Inc()
		return e.result, true
	}
	cc.mu.Unlock()

	cc.misses.Inc()
	result = cc.compiler.Compile(source, path)

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.clock++
	cc.entries[path] = &cacheEntry{
		digest:   digest,
		result:   result,
		accessed: cc.clock,
	}
	if len(cc.entries) > cc.maxEntries {
		cc.evictLRU(len(cc.entries) - cc.maxEntries)
	}
	return result, false
}

// Get 返回 path 最近一次的编译结果
func (cc *Cache) Get(path string) (*Result, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	e, ok := cc.entries[path]
	if !ok {
		return nil, false
	}
	return e.result, true
}

// Invalidate 使缓存条目失效
func (cc *Cache) Invalidate(path string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.entries, path)
}

// Clear 清空所有缓存
func (cc *Cache) Clear() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.entries = make(map[string]*cacheEntry)
}

// Stats 获取缓存统计
func (cc *Cache) Stats() CacheStats {
	cc.mu.Lock()
	n := len(cc.entries)
	cc.mu.Unlock()
	return CacheStats{
		Entries: n,
		Hits:    cc.hits.Load(),
		Misses:  cc.misses.Load(),
	}
}

// evictLRU 删除最久未访问的 count 个条目，调用方持有锁
func (cc *Cache) evictLRU(count int) {
	paths := make([]string, 0, len(cc.entries))
	for p := range cc.entries {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return cc.entries[paths[i]].accessed < cc.entries[paths[j]].accessed
	})
	for i := 0; i < count && i < len(paths); i++ {
		delete(cc.entries, paths[i])
	}
}

// Digest 计算内容摘要（blake2b-256，十六进制）
func Digest(content string) string {
	h := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}
