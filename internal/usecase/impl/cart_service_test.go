package impl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"partsgate/internal/domain/entity"
	domainerrors "partsgate/internal/domain/errors"
	"partsgate/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	service   usecase.CartUsecase
	notifier  *fakeNotifier
	navigator *fakeNavigator
}

func newCartFixture(t *testing.T, handler http.Handler) *cartFixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	notifier := &fakeNotifier{}
	navigator := &fakeNavigator{}

	bridge, err := newTestBridge(server, &fakeTokens{token: "access"}, notifier, navigator)
	require.NoError(t, err)

	service := NewCartService(CartServiceParams{
		Bridge:   bridge,
		Notifier: notifier,
		Logger:   newDiscardLogger(),
	})

	return &cartFixture{service: service, notifier: notifier, navigator: navigator}
}

func cartPayload(items int) map[string]any {
	lines := make([]map[string]any, 0, items)
	for i := 0; i < items; i++ {
		lines = append(lines, map[string]any{
			"id":       "item-1",
			"partId":   "part-1",
			"quantity": 2,
			"part":     map[string]any{"name": "brake pad set", "price": "64.99"},
		})
	}

	return map[string]any{
		"id":         "cart-1",
		"items":      lines,
		"totalPrice": "129.98",
		"itemCount":  items * 2,
	}
}

func TestCartService_Refresh_Success_LoadsSnapshot(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/cart", r.URL.Path)
		_ = json.NewEncoder(w).Encode(cartPayload(1))
	})

	fixture := newCartFixture(t, handler)

	view, err := fixture.service.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, entity.CartLoaded, view.State)
	require.NotNil(t, view.Cart)
	assert.Equal(t, json.Number("129.98"), view.Cart.TotalPrice, "total is the backend's verbatim figure")
	assert.Len(t, view.Cart.Items, 1)
}

func TestCartService_Refresh_EmptyCart_EmptyState(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(cartPayload(0))
	})

	fixture := newCartFixture(t, handler)

	view, err := fixture.service.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, entity.CartEmpty, view.State)
}

func TestCartService_AddItem_Success_NotifiesAndOpensDrawer(t *testing.T) {
	var posts, gets atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			require.Equal(t, "/api/v1/cart/items", r.URL.Path)
			posts.Add(1)
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			gets.Add(1)
			_ = json.NewEncoder(w).Encode(cartPayload(1))
		}
	})

	fixture := newCartFixture(t, handler)

	view, err := fixture.service.AddItem(context.Background(), "part-1", 2)

	require.NoError(t, err)
	assert.True(t, view.OpenDrawer)
	assert.Equal(t, entity.CartLoaded, view.State)
	assert.Equal(t, int32(1), posts.Load())
	assert.Equal(t, int32(1), gets.Load(), "mutation is followed by a full re-fetch")
	assert.NotEmpty(t, fixture.notifier.successes)
}

func TestCartService_AddItem_QuantityBelowOne_RejectedLocally(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	fixture := newCartFixture(t, handler)

	_, err := fixture.service.AddItem(context.Background(), "part-1", 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)
	assert.Zero(t, hits.Load())
}

func TestCartService_AddItem_InsufficientStock_PassedThroughUntouched(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(cartPayload(1))

			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "INSUFFICIENT_STOCK",
			"message": "only 1 unit left",
		})
	})

	fixture := newCartFixture(t, handler)
	_, err := fixture.service.Refresh(context.Background())
	require.NoError(t, err)

	view, err := fixture.service.AddItem(context.Background(), "part-1", 5)

	require.Error(t, err)
	assert.Equal(t, domainerrors.ClassDomainValidation, domainerrors.ClassOf(err))

	var apiErr *domainerrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "only 1 unit left", apiErr.Message(), "backend wording survives for inline display")

	assert.Empty(t, fixture.notifier.failures, "domain rejections never raise the generic notification")
	require.NotNil(t, view.Cart, "last good snapshot still stands")
	assert.Equal(t, entity.CartLoaded, view.State)
}

func TestCartService_UpdateQuantity_BelowOne_RejectedLocally(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	fixture := newCartFixture(t, handler)

	_, err := fixture.service.UpdateQuantity(context.Background(), "item-1", 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidQuantity)
	assert.Zero(t, hits.Load(), "removal is the only zero-quantity path")
}

func TestCartService_UpdateQuantity_Success_Refetches(t *testing.T) {
	var puts atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			require.Equal(t, "/api/v1/cart/items/item-1", r.URL.Path)
			puts.Add(1)
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(cartPayload(1))
		}
	})

	fixture := newCartFixture(t, handler)

	view, err := fixture.service.UpdateQuantity(context.Background(), "item-1", 3)

	require.NoError(t, err)
	assert.Equal(t, int32(1), puts.Load())
	assert.Equal(t, entity.CartLoaded, view.State)
}

func TestCartService_RemoveItem_Failure_ExplicitNotification(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	fixture := newCartFixture(t, handler)

	_, err := fixture.service.RemoveItem(context.Background(), "item-1")

	require.Error(t, err)
	assert.Contains(t, fixture.notifier.failures, "could not remove item, please try again",
		"a row the user believes gone must not silently resurface at checkout")
}

func TestCartService_RemoveItem_Success_Refetches(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			require.Equal(t, "/api/v1/cart/items/item-1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(cartPayload(0))
		}
	})

	fixture := newCartFixture(t, handler)

	view, err := fixture.service.RemoveItem(context.Background(), "item-1")

	require.NoError(t, err)
	assert.Equal(t, entity.CartEmpty, view.State)
}

func TestCartService_Clear_ResetsState(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(cartPayload(1))
		case http.MethodDelete:
			require.Equal(t, "/api/v1/cart", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	fixture := newCartFixture(t, handler)
	_, err := fixture.service.Refresh(context.Background())
	require.NoError(t, err)

	require.NoError(t, fixture.service.Clear(context.Background()))

	view := fixture.service.Snapshot(context.Background())
	assert.Equal(t, entity.CartEmpty, view.State)
	assert.Nil(t, view.Cart)
}

func TestCartService_Refresh_Failure_KeepsLastGoodSnapshot(t *testing.T) {
	var failing atomic.Bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}
		_ = json.NewEncoder(w).Encode(cartPayload(1))
	})

	fixture := newCartFixture(t, handler)
	_, err := fixture.service.Refresh(context.Background())
	require.NoError(t, err)

	failing.Store(true)
	view, err := fixture.service.Refresh(context.Background())

	require.Error(t, err)
	assert.Equal(t, entity.CartErrored, view.State)
	require.NotNil(t, view.Cart, "previous snapshot still stands")
	assert.Equal(t, json.Number("129.98"), view.Cart.TotalPrice)
}
