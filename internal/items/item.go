package items

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	MinID uint64 = 1000
	MaxID uint64 = 9999
)

var ErrIDOutOfRange = fmt.Errorf("ID must be between %d and %d", MinID, MaxID)

var ErrEmptyName = errors.New("name must not be empty")

// Item is immutable once constructed; the id range is checked only here.
type Item struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func New(name string, id uint64) (Item, error) {
	if name == "" {
		return Item{}, ErrEmptyName
	}
	if !ValidID(id) {
		return Item{}, fmt.Errorf("%w: got %d", ErrIDOutOfRange, id)
	}
	return Item{ID: id, Name: name}, nil
}

func NewWithRandomID(name string) Item {
	return Item{ID: RandomID(), Name: name}
}

func ValidID(id uint64) bool {
	return id >= MinID && id <= MaxID
}

// RandomID draws uniformly from [MinID, MaxID].
func RandomID() uint64 {
	return MinID + rand.Uint64N(MaxID-MinID+1)
}
