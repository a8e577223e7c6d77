package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is a resolved address as stored in the geocoding cache.
type Entry struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
	Address     string  `json:"address"`      // Address is the source address the entry was resolved from.
	DisplayName string  `json:"display_name"` // DisplayName is the provider's label for the match.
}

// Cache maps an address string to its geocoding result.
// Keys are matched exactly, without any normalization.
// It is not safe for concurrent use.
type Cache struct {
	entries map[string]Entry
}

// Store loads and persists a whole cache at once.
type Store interface {
	Load(ctx context.Context) (*Cache, error)
	Save(ctx context.Context, c *Cache) error
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the entry for address, or false on miss.
func (c *Cache) Get(address string) (Entry, bool) {
	entry, ok := c.entries[address]
	return entry, ok
}

// Put stores entry under address unless the address is already cached.
// It reports whether the entry was added.
func (c *Cache) Put(address string, entry Entry) bool {
	if _, exists := c.entries[address]; exists {
		return false
	}
	c.entries[address] = entry

	return true
}

// Len returns the number of cached addresses.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Addresses returns the cached addresses in lexical order.
func (c *Cache) Addresses() []string {
	addresses := make([]string, 0, len(c.entries))
	for address := range c.entries {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	return addresses
}

// MarshalJSON encodes the cache as a JSON object keyed by address.
func (c *Cache) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.entries)
}

// UnmarshalJSON replaces the cache contents with the decoded JSON object.
func (c *Cache) UnmarshalJSON(data []byte) error {
	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode geocoding cache: %w", err)
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	c.entries = entries

	return nil
}
