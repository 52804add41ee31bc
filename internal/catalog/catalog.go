// Package catalog holds the grocery catalog data model: the ordered item
// list, the active shopping selection, and the per-item unchecked state,
// together with the JSON import merger and exporter.
//
// A List is a plain in-memory value owned by the caller; persistence goes
// through kvstore and is not this package's concern. Every mutation keeps
// two invariants:
//
//   - Selected contains only ids of existing items.
//   - Unchecked is a subset of Selected.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Item is one catalog entry. JSON tags match the interchange format used
// for import and export.
type Item struct {
	ID    string  `json:"id"`
	Store string  `json:"store"`
	Name  string  `json:"item"`
	Price float64 `json:"price"`
}

// Key returns the case-insensitive deduplication key for an item:
// lowercase trimmed store and name joined with "|".
func (i Item) Key() string {
	return ItemKey(i.Store, i.Name)
}

// ItemKey builds the deduplication key from raw store and name values.
func ItemKey(store, name string) string {
	return strings.ToLower(strings.TrimSpace(store)) + "|" + strings.ToLower(strings.TrimSpace(name))
}

// List is the full working state: items in insertion order, the active
// shopping selection, and the unchecked subset.
type List struct {
	Items     []Item   `json:"items"`
	Selected  []string `json:"selected"`
	Unchecked []string `json:"unchecked"`
}

// Find returns the item with the given id.
func (l *List) Find(id string) (Item, bool) {
	for _, it := range l.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// FindByKey returns the item matching the (store, name) pair, compared
// case-insensitively.
func (l *List) FindByKey(store, name string) (Item, bool) {
	key := ItemKey(store, name)
	for _, it := range l.Items {
		if it.Key() == key {
			return it, true
		}
	}
	return Item{}, false
}

// AddItem validates and appends a new item, returning it with a fresh id.
// The trimmed store and name must be non-empty, the price non-negative,
// and the (store, name) pair unused.
func (l *List) AddItem(store, name string, price float64) (Item, error) {
	store = strings.TrimSpace(store)
	name = strings.TrimSpace(name)
	if store == "" {
		return Item{}, fmt.Errorf("store must not be empty")
	}
	if name == "" {
		return Item{}, fmt.Errorf("item name must not be empty")
	}
	if price < 0 {
		return Item{}, fmt.Errorf("price must not be negative")
	}
	if existing, ok := l.FindByKey(store, name); ok {
		return Item{}, fmt.Errorf("item %q at %q already exists (id %s)", name, store, existing.ID)
	}

	it := Item{
		ID:    synthesizeID(l.usedIDs(), time.Now()),
		Store: store,
		Name:  name,
		Price: price,
	}
	l.Items = append(l.Items, it)
	return it, nil
}

// EditItem updates an existing item's fields in place. The id is immutable.
// Changing the (store, name) pair to one used by a different item fails.
func (l *List) EditItem(id, store, name string, price float64) (Item, error) {
	store = strings.TrimSpace(store)
	name = strings.TrimSpace(name)
	if store == "" || name == "" {
		return Item{}, fmt.Errorf("store and item name must not be empty")
	}
	if price < 0 {
		return Item{}, fmt.Errorf("price must not be negative")
	}
	if other, ok := l.FindByKey(store, name); ok && other.ID != id {
		return Item{}, fmt.Errorf("item %q at %q already exists (id %s)", name, store, other.ID)
	}

	for idx, it := range l.Items {
		if it.ID == id {
			l.Items[idx].Store = store
			l.Items[idx].Name = name
			l.Items[idx].Price = price
			return l.Items[idx], nil
		}
	}
	return Item{}, fmt.Errorf("no item with id %q", id)
}

// RemoveItem deletes an item and cascades the removal through Selected and
// Unchecked, so no stale id is left dangling in either set.
func (l *List) RemoveItem(id string) bool {
	for idx, it := range l.Items {
		if it.ID == id {
			l.Items = append(l.Items[:idx:idx], l.Items[idx+1:]...)
			l.Selected = removeID(l.Selected, id)
			l.Unchecked = removeID(l.Unchecked, id)
			return true
		}
	}
	return false
}

// Select puts an existing item on the active shopping list.
// Selecting an already-selected item is a no-op.
func (l *List) Select(id string) error {
	if _, ok := l.Find(id); !ok {
		return fmt.Errorf("no item with id %q", id)
	}
	if containsID(l.Selected, id) {
		return nil
	}
	l.Selected = append(l.Selected, id)
	return nil
}

// Deselect takes an item off the active shopping list, cascading the
// removal through Unchecked to preserve the subset invariant.
func (l *List) Deselect(id string) {
	l.Selected = removeID(l.Selected, id)
	l.Unchecked = removeID(l.Unchecked, id)
}

// Uncheck marks a selected item as unchecked (struck through while
// shopping). Fails for an item that is not on the active list.
func (l *List) Uncheck(id string) error {
	if !containsID(l.Selected, id) {
		return fmt.Errorf("item %q is not on the shopping list", id)
	}
	if !containsID(l.Unchecked, id) {
		l.Unchecked = append(l.Unchecked, id)
	}
	return nil
}

// Check clears the unchecked mark. Unknown ids are a no-op.
func (l *List) Check(id string) {
	l.Unchecked = removeID(l.Unchecked, id)
}

// Prune drops selection and unchecked entries that no longer reference an
// existing item, restoring both invariants after external edits (e.g. a
// catalog replaced wholesale by an import).
func (l *List) Prune() {
	ids := l.usedIDs()
	l.Selected = keepIDs(l.Selected, func(id string) bool { return ids[id] })
	selected := make(map[string]bool, len(l.Selected))
	for _, id := range l.Selected {
		selected[id] = true
	}
	l.Unchecked = keepIDs(l.Unchecked, func(id string) bool { return selected[id] })
}

// usedIDs returns the set of item ids currently in the catalog.
func (l *List) usedIDs() map[string]bool {
	ids := make(map[string]bool, len(l.Items))
	for _, it := range l.Items {
		ids[it.ID] = true
	}
	return ids
}

// synthesizeID generates a fresh id unique against used, in the
// item-<unixmilli> form the interchange format documents. Collisions within
// the same millisecond get a numeric suffix.
func synthesizeID(used map[string]bool, now time.Time) string {
	base := fmt.Sprintf("item-%d", now.UnixMilli())
	if !used[base] {
		return base
	}
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if !used[id] {
			return id
		}
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	for idx, v := range ids {
		if v == id {
			return append(ids[:idx:idx], ids[idx+1:]...)
		}
	}
	return ids
}

func keepIDs(ids []string, keep func(string) bool) []string {
	out := ids[:0]
	for _, id := range ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}
