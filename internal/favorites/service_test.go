package favorites

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockFavoriteStore keeps the set in memory so sequential toggles observe
// each other's writes.
type mockFavoriteStore struct {
	ids   []int64
	error error
}

func (m *mockFavoriteStore) Favorites(_ context.Context) ([]int64, error) {
	return m.ids, m.error
}

func (m *mockFavoriteStore) AddFavorite(_ context.Context, productID int64) error {
	if m.error != nil {
		return m.error
	}
	if !slices.Contains(m.ids, productID) {
		m.ids = append(m.ids, productID)
	}
	return nil
}

func (m *mockFavoriteStore) RemoveFavorite(_ context.Context, productID int64) error {
	if m.error != nil {
		return m.error
	}
	m.ids = slices.DeleteFunc(m.ids, func(id int64) bool { return id == productID })
	return nil
}

func (m *mockFavoriteStore) ClearFavorites(_ context.Context) error {
	if m.error != nil {
		return m.error
	}
	m.ids = nil
	return nil
}

func Test_FavoriteService_Toggle(t *testing.T) {
	testCases := []struct {
		name     string
		initial  []int64
		expected *Mark
		after    []int64
	}{
		{
			name:     "Success - unmarked product becomes favorite",
			initial:  []int64{2},
			expected: &Mark{ProductID: 1, Favorite: true},
			after:    []int64{2, 1},
		},
		{
			name:     "Success - marked product is unmarked",
			initial:  []int64{1, 2},
			expected: &Mark{ProductID: 1, Favorite: false},
			after:    []int64{2},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockStore := &mockFavoriteStore{ids: tc.initial}
			service := NewService(mockStore)
			// when
			mark, err := service.Toggle(context.Background(), 1)
			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expected, mark)
			assert.Equal(t, tc.after, mockStore.ids)
		})
	}
}

func Test_FavoriteService_Toggle_RoundTrip(t *testing.T) {
	// given
	mockStore := &mockFavoriteStore{}
	service := NewService(mockStore)

	// when: two sequential toggles of the same id
	first, err := service.Toggle(context.Background(), 7)
	require.NoError(t, err)
	second, err := service.Toggle(context.Background(), 7)
	require.NoError(t, err)

	// then: the set is back where it started
	assert.True(t, first.Favorite)
	assert.False(t, second.Favorite)
	assert.Empty(t, mockStore.ids)
}

func Test_FavoriteService_AddRemove(t *testing.T) {
	// given
	mockStore := &mockFavoriteStore{}
	service := NewService(mockStore)

	// when / then
	mark, err := service.Add(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &Mark{ProductID: 3, Favorite: true}, mark)

	// adding again is a no-op but still reports the marked state
	mark, err = service.Add(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, mark.Favorite)
	assert.Equal(t, []int64{3}, mockStore.ids)

	mark, err = service.Remove(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &Mark{ProductID: 3, Favorite: false}, mark)
	assert.Empty(t, mockStore.ids)
}

func Test_FavoriteService_Errors(t *testing.T) {
	// given
	errStore := errors.New("store error")
	service := NewService(&mockFavoriteStore{error: errStore})

	// when / then
	_, err := service.List(context.Background())
	assert.ErrorIs(t, err, errStore)

	_, err = service.Toggle(context.Background(), 1)
	assert.ErrorIs(t, err, errStore)

	_, err = service.Add(context.Background(), 1)
	assert.ErrorIs(t, err, errStore)

	_, err = service.Remove(context.Background(), 1)
	assert.ErrorIs(t, err, errStore)

	assert.ErrorIs(t, service.Clear(context.Background()), errStore)
}

func Test_FavoriteService_ListAndClear(t *testing.T) {
	// given
	mockStore := &mockFavoriteStore{ids: []int64{1, 2, 3}}
	service := NewService(mockStore)

	// when / then
	ids, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	require.NoError(t, service.Clear(context.Background()))
	assert.Empty(t, mockStore.ids)
}
