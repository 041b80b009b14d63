// Package colors hands out Google Calendar color ids to routine
// categories, recycling the least recently used one when all are taken.
package colors

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Calendar event colors run from "1" (Lavender) to "11" (Tomato).
const (
	paletteSize = 11
	// Uncategorized routines get Graphite.
	uncategorized = "8"
)

type CategoryState struct {
	ColorID      string    `json:"color_id"`
	LastModified time.Time `json:"last_modified"`
}

type ColorCache struct {
	Path       string
	Categories map[string]*CategoryState
	dirty      bool
	now        func() time.Time
}

// NewColorCache opens the cache at path, empty if the file is absent.
func NewColorCache(path string) (*ColorCache, error) {
	cache := &ColorCache{
		Path:       path,
		Categories: make(map[string]*CategoryState),
		now:        time.Now,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&c.Categories)
}

func (c *ColorCache) Save() error {
	if !c.dirty {
		return nil
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.Create(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	err = json.NewEncoder(f).Encode(c.Categories)
	if err == nil {
		c.dirty = false
	}
	return err
}

// ColorID returns the color for a category, assigning one on first use.
// Each lookup refreshes the category's LRU position; the change is only
// written on the next Save.
func (c *ColorCache) ColorID(category string) string {
	if category == "" {
		return uncategorized
	}

	if state, exists := c.Categories[category]; exists {
		state.LastModified = c.now()
		c.dirty = true
		return state.ColorID
	}
	return c.assignColor(category)
}

func (c *ColorCache) assignColor(category string) string {
	used := make(map[string]bool)
	for _, s := range c.Categories {
		used[s.ColorID] = true
	}

	for i := 1; i <= paletteSize; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.claim(category, id)
			return id
		}
	}

	// Palette is full: evict the least recently used category.
	var oldest string
	var oldestTime time.Time
	first := true
	for name, s := range c.Categories {
		if first || s.LastModified.Before(oldestTime) {
			oldestTime = s.LastModified
			oldest = name
			first = false
		}
	}

	recycled := c.Categories[oldest].ColorID
	delete(c.Categories, oldest)
	c.claim(category, recycled)
	return recycled
}

func (c *ColorCache) claim(category, id string) {
	c.Categories[category] = &CategoryState{ColorID: id, LastModified: c.now()}
	c.dirty = true
}
