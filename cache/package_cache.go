package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/SergeiSkv/ruletest/loader"
)

const defaultMaxItems = 64

// LoadFunc loads the fixture package name below dir.
type LoadFunc func(dir, name string) (*loader.Package, error)

// PackageCache keeps recently loaded fixture packages in memory with LRU
// eviction. An entry is reused only while the hash of the fixture sources
// is unchanged. Concurrent loads of the same fixture share one call.
type PackageCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	lru      *list.List
	maxItems int
	load     LoadFunc
	group    singleflight.Group
	stats    Stats
}

// Stats counts cache lookups.
type Stats struct {
	Items  int
	Hits   int
	Misses int
}

type cacheItem struct {
	key  string
	hash string
	pkg  *loader.Package
}

// New creates a cache holding at most maxItems packages. A nil load uses
// loader.Load.
func New(maxItems int, load LoadFunc) *PackageCache {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	if load == nil {
		load = loader.Load
	}
	return &PackageCache{
		items:    make(map[string]*list.Element, maxItems),
		lru:      list.New(),
		maxItems: maxItems,
		load:     load,
	}
}

// Load returns the cached package for dir and name, loading it when it is
// missing or its sources changed since it was cached.
func (c *PackageCache) Load(dir, name string) (*loader.Package, error) {
	key := filepath.Join(dir, name)
	hash, err := HashDir(key)
	if err != nil {
		// Let the loader produce its own not-found error.
		hash = ""
	}

	if pkg, ok := c.get(key, hash); ok {
		return pkg, nil
	}

	v, err, _ := c.group.Do(key+"@"+hash, func() (any, error) {
		if pkg, ok := c.peek(key, hash); ok {
			return pkg, nil
		}
		pkg, err := c.load(dir, name)
		if err != nil {
			return nil, err
		}
		if hash != "" {
			c.put(key, hash, pkg)
		}
		return pkg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*loader.Package), nil
}

// Stats returns a snapshot of the lookup counters.
func (c *PackageCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Items = c.lru.Len()
	return s
}

// Clear drops every entry.
func (c *PackageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.maxItems)
	c.lru.Init()
}

func (c *PackageCache) get(key, hash string) (*loader.Package, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if ok && hash != "" && elem.Value.(*cacheItem).hash == hash {
		c.lru.MoveToFront(elem)
		c.stats.Hits++
		return elem.Value.(*cacheItem).pkg, true
	}
	c.stats.Misses++
	return nil, false
}

func (c *PackageCache) peek(key, hash string) (*loader.Package, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[key]
	if !ok || hash == "" || elem.Value.(*cacheItem).hash != hash {
		return nil, false
	}
	return elem.Value.(*cacheItem).pkg, true
}

func (c *PackageCache) put(key, hash string, pkg *loader.Package) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		item := elem.Value.(*cacheItem)
		item.hash = hash
		item.pkg = pkg
		c.lru.MoveToFront(elem)
		return
	}

	c.items[key] = c.lru.PushFront(&cacheItem{key: key, hash: hash, pkg: pkg})
	for c.lru.Len() > c.maxItems {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem).key)
	}
}

// HashDir returns the SHA256 over the names and contents of the Go files
// directly inside dir.
func HashDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".go") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no Go files in %s", dir)
	}
	slices.Sort(names)

	hasher := sha256.New()
	for _, name := range names {
		if err := hashFile(hasher, filepath.Join(dir, name)); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = io.WriteString(w, filepath.Base(path)+"\x00")
	_, err = io.Copy(w, file)
	return err
}
