package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/abgdnv/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCartStore is a mock implementation of the store.CartStore interface
type mockCartStore struct {
	items       []store.CartItem
	newQuantity int64
	error       error

	addCalls    int
	setCalls    int
	removeCalls int
	clearCalls  int
	gotQuantity int64
}

func (m *mockCartStore) CartItems(_ context.Context) ([]store.CartItem, error) {
	return m.items, m.error
}

func (m *mockCartStore) AddCartItem(_ context.Context, _ store.Product, quantity int64) (int64, error) {
	m.addCalls++
	m.gotQuantity = quantity
	if m.error != nil {
		return 0, m.error
	}
	return m.newQuantity, nil
}

func (m *mockCartStore) SetCartQuantity(_ context.Context, _, quantity int64) error {
	m.setCalls++
	m.gotQuantity = quantity
	return m.error
}

func (m *mockCartStore) RemoveCartItem(_ context.Context, _ int64) error {
	m.removeCalls++
	return m.error
}

func (m *mockCartStore) ClearCart(_ context.Context) error {
	m.clearCalls++
	return m.error
}

func Test_CartService_Add(t *testing.T) {
	errStore := errors.New("store error")
	product := store.Product{ID: 1, Title: "iPhone 9"}
	testCases := []struct {
		name        string
		mockStore   *mockCartStore
		quantity    int64
		expected    *Line
		expectError bool
		expectCalls int
	}{
		{
			name:        "Success - new line",
			mockStore:   &mockCartStore{newQuantity: 2},
			quantity:    2,
			expected:    &Line{ProductID: 1, Quantity: 2},
			expectCalls: 1,
		},
		{
			name:        "Success - increments an existing line",
			mockStore:   &mockCartStore{newQuantity: 5},
			quantity:    3,
			expected:    &Line{ProductID: 1, Quantity: 5},
			expectCalls: 1,
		},
		{
			name:        "Error - zero quantity rejected before the store",
			mockStore:   &mockCartStore{},
			quantity:    0,
			expectError: true,
			expectCalls: 0,
		},
		{
			name:        "Error - negative quantity rejected before the store",
			mockStore:   &mockCartStore{},
			quantity:    -1,
			expectError: true,
			expectCalls: 0,
		},
		{
			name:        "Error - store failure",
			mockStore:   &mockCartStore{error: errStore},
			quantity:    1,
			expectError: true,
			expectCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			line, err := service.Add(context.Background(), product, tc.quantity)
			// then
			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, line)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, line)
			}
			assert.Equal(t, tc.expectCalls, tc.mockStore.addCalls, "store call count should match")
		})
	}
}

func Test_CartService_UpdateQuantity(t *testing.T) {
	testCases := []struct {
		name          string
		quantity      int64
		expected      *Line
		expectSets    int
		expectRemoves int
	}{
		{
			name:       "Success - positive quantity is set as-is",
			quantity:   4,
			expected:   &Line{ProductID: 1, Quantity: 4},
			expectSets: 1,
		},
		{
			name:          "Success - zero quantity removes the line",
			quantity:      0,
			expected:      &Line{ProductID: 1, Quantity: 0},
			expectRemoves: 1,
		},
		{
			name:          "Success - negative quantity removes the line",
			quantity:      -3,
			expected:      &Line{ProductID: 1, Quantity: 0},
			expectRemoves: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockStore := &mockCartStore{}
			service := NewService(mockStore)
			// when
			line, err := service.UpdateQuantity(context.Background(), 1, tc.quantity)
			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expected, line)
			assert.Equal(t, tc.expectSets, mockStore.setCalls, "set call count should match")
			assert.Equal(t, tc.expectRemoves, mockStore.removeCalls, "remove call count should match")
			if tc.expectSets > 0 {
				assert.Equal(t, tc.quantity, mockStore.gotQuantity)
			}
		})
	}
}

func Test_CartService_Items(t *testing.T) {
	errStore := errors.New("store error")
	items := []store.CartItem{{Product: store.Product{ID: 1}, Quantity: 2}}
	testCases := []struct {
		name        string
		mockStore   *mockCartStore
		expected    []store.CartItem
		expectError error
	}{
		{
			name:      "Success - items returned",
			mockStore: &mockCartStore{items: items},
			expected:  items,
		},
		{
			name:        "Error - store failure",
			mockStore:   &mockCartStore{error: errStore},
			expectError: errStore,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			found, err := service.Items(context.Background())
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_CartService_RemoveAndClear(t *testing.T) {
	// given
	mockStore := &mockCartStore{}
	service := NewService(mockStore)

	// when / then
	require.NoError(t, service.Remove(context.Background(), 1))
	assert.Equal(t, 1, mockStore.removeCalls)

	require.NoError(t, service.Clear(context.Background()))
	assert.Equal(t, 1, mockStore.clearCalls)

	mockStore.error = errors.New("store error")
	assert.Error(t, service.Remove(context.Background(), 1))
	assert.Error(t, service.Clear(context.Background()))
}
