package items

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_IDRange(t *testing.T) {
	for _, id := range []uint64{0, 1, 999, 10000, 10001, 1 << 40} {
		_, err := New("n", id)
		require.Error(t, err, "id %d", id)
		require.True(t, errors.Is(err, ErrIDOutOfRange), "id %d: %v", id, err)
	}

	for _, id := range []uint64{MinID, 1001, 1234, 5000, 9998, MaxID} {
		it, err := New("n", id)
		require.NoError(t, err)
		require.Equal(t, Item{ID: id, Name: "n"}, it)
	}
}

func TestNew_EmptyName(t *testing.T) {
	_, err := New("", 1234)
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestNew_ErrorMessage(t *testing.T) {
	_, err := New("n", 10000)
	require.EqualError(t, err, "ID must be between 1000 and 9999: got 10000")
}

func TestRandomID_InRange(t *testing.T) {
	for i := 0; i < 10000; i++ {
		id := RandomID()
		require.True(t, ValidID(id), "RandomID()=%d outside [%d, %d]", id, MinID, MaxID)
	}

	it := NewWithRandomID("r")
	require.Equal(t, "r", it.Name)
	require.True(t, ValidID(it.ID))
}
