package items

const DefaultCapacity = 8192

// Store maps item names to items. Every method is atomic on its own and none
// of them fail; absence is reported through the boolean result.
type Store interface {
	Get(name string) (Item, bool)
	Contains(name string) bool

	// Insert adds or replaces it, returning the replaced item if any.
	Insert(it Item) (Item, bool)
	// InsertIfAbsent adds it unless its name is taken. On conflict the
	// existing item is returned with false.
	InsertIfAbsent(it Item) (Item, bool)
	Remove(name string) (Item, bool)

	Keys() []string
	Snapshot() []Item
	Len() int
	Capacity() int
	// Clear empties the store and reports how many items it held.
	Clear() int
}
