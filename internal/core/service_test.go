package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cartcore/internal/infra/persistence/memory"
	"cartcore/pkg/domain"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestService(t *testing.T, store domain.DurableStore, opts ...Option) *Service {
	t.Helper()
	svc := NewService(store, opts...)
	t.Cleanup(svc.Close)
	if err := svc.AwaitHydration(testContext(t)); err != nil {
		t.Fatalf("await hydration: %v", err)
	}
	return svc
}

func TestHydrationLoadsPersistedSnapshots(t *testing.T) {
	ctx := testContext(t)
	store := memory.NewStore()
	seed := `[{"id":"p1","name":"Ceramic Mug","price":100000,"quantity":2}]`
	if err := store.Set(ctx, domain.StorageKeyCart, seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if err := store.Set(ctx, domain.StorageKeyAddresses,
		`[{"id":"a1","name":"An","phone":"090","address":"12 Ly Thuong Kiet","isDefault":true}]`); err != nil {
		t.Fatalf("seed addresses: %v", err)
	}

	svc := newTestService(t, store)
	cart := svc.Cart()
	if cart.Len() != 1 || cart.Derived.Total != 200000 {
		t.Fatalf("hydrated cart = %+v", cart)
	}
	if d, ok := svc.DefaultAddress(); !ok || d.ID != "a1" {
		t.Fatalf("default address = %+v (ok=%v)", d, ok)
	}
}

func TestHydrationDegradesMalformedSnapshotToEmpty(t *testing.T) {
	ctx := testContext(t)
	store := memory.NewStore()
	if err := store.Set(ctx, domain.StorageKeyCart, `{"not":"an array"}`); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	svc := newTestService(t, store)
	if svc.Cart().Len() != 0 {
		t.Fatalf("malformed snapshot must hydrate to empty cart")
	}
}

func TestCartOperationsPersistThroughFlush(t *testing.T) {
	ctx := testContext(t)
	store := memory.NewStore()
	svc := newTestService(t, store)

	svc.AddToCart(ctx, domain.CartLine{ID: "p1", Name: "Mug", UnitPrice: 100000, Quantity: 1})
	svc.AddToCart(ctx, domain.CartLine{ID: "p1", Name: "Mug", UnitPrice: 100000, Quantity: 1})
	svc.UpdateQuantity(ctx, "p1", 0) // clamps to 1
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	payload, ok, err := store.Get(ctx, domain.StorageKeyCart)
	if err != nil || !ok {
		t.Fatalf("cart snapshot missing: ok=%v err=%v", ok, err)
	}
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(payload), &lines); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("persisted cart = %+v", lines)
	}

	svc.ClearCart(ctx)
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("flush after clear: %v", err)
	}
	if payload, _, _ := store.Get(ctx, domain.StorageKeyCart); payload != "[]" {
		t.Fatalf("cleared cart must persist as empty array, got %q", payload)
	}
}

func TestFavoritesToggle(t *testing.T) {
	ctx := testContext(t)
	svc := newTestService(t, memory.NewStore())

	svc.AddFavorite(ctx, domain.FavoriteEntry{ID: "p9", Name: "Lamp"})
	svc.AddFavorite(ctx, domain.FavoriteEntry{ID: "p9", Name: "Lamp"})
	if !svc.IsFavorite("p9") {
		t.Fatalf("p9 should be favorite")
	}
	if got := svc.Favorites().Derived.Count; got != 1 {
		t.Fatalf("favorites count = %d, want 1", got)
	}
	svc.RemoveFavorite(ctx, "p9")
	if svc.IsFavorite("p9") {
		t.Fatalf("p9 should no longer be favorite")
	}
}

func TestSaveAddressGeneratesIDAndManagesDefault(t *testing.T) {
	ctx := testContext(t)
	svc := newTestService(t, memory.NewStore())

	first := svc.SaveAddress(ctx, domain.Address{RecipientName: "An", Phone: "090", Line: "12 LTK", IsDefault: true})
	if first == "" {
		t.Fatalf("expected generated id")
	}
	second := svc.SaveAddress(ctx, domain.Address{RecipientName: "Binh", Phone: "091", Line: "34 HB", IsDefault: true})
	if second == first {
		t.Fatalf("generated ids must differ")
	}

	// The newest default claim wins; the older address is demoted.
	if d, ok := svc.DefaultAddress(); !ok || d.ID != second {
		t.Fatalf("default = %+v (ok=%v), want %s", d, ok, second)
	}
	svc.SetDefaultAddress(ctx, first)
	if d, _ := svc.DefaultAddress(); d.ID != first {
		t.Fatalf("SetDefaultAddress did not promote %s", first)
	}
	svc.RemoveAddress(ctx, first)
	if d, ok := svc.DefaultAddress(); !ok || d.ID != second {
		t.Fatalf("removing the default must promote the remaining address, got %+v", d)
	}
	svc.RemoveAddress(ctx, second)
	if _, ok := svc.DefaultAddress(); ok {
		t.Fatalf("empty book must have no default")
	}
}

func TestUpdateAddressMutatesInPlace(t *testing.T) {
	ctx := testContext(t)
	svc := newTestService(t, memory.NewStore())
	id := svc.SaveAddress(ctx, domain.Address{RecipientName: "An", Phone: "090", Line: "12 LTK"})
	svc.UpdateAddress(ctx, id, func(a *domain.Address) { a.Phone = "099" })
	addrs := svc.Addresses().Entities
	if len(addrs) != 1 || addrs[0].Phone != "099" {
		t.Fatalf("addresses = %+v", addrs)
	}
	// Unknown id is a no-op.
	svc.UpdateAddress(ctx, "missing", func(a *domain.Address) { a.Phone = "000" })
	if got := svc.Addresses().Entities[0].Phone; got != "099" {
		t.Fatalf("unknown-id update mutated state: %q", got)
	}
}

func TestCartTotalsUsesConfiguredPricing(t *testing.T) {
	ctx := testContext(t)
	flatShipping := func(sum domain.CartSummary) domain.OrderTotals {
		return domain.OrderTotals{
			Subtotal:   sum.Total,
			Shipping:   30000,
			GrandTotal: sum.Total + 30000,
		}
	}
	svc := newTestService(t, memory.NewStore(), WithPricing(flatShipping))
	svc.AddToCart(ctx, domain.CartLine{ID: "p1", UnitPrice: 100000, Quantity: 2})

	totals := svc.CartTotals()
	if totals.Subtotal != 200000 || totals.GrandTotal != 230000 {
		t.Fatalf("totals = %+v", totals)
	}
}

func TestDispatchesAreObserved(t *testing.T) {
	ctx := testContext(t)
	rec := NewExpvarMetricsRecorder("")
	svc := newTestService(t, memory.NewStore(), WithMetrics(rec))

	svc.AddToCart(ctx, domain.CartLine{ID: "p1", UnitPrice: 1000, Quantity: 1})
	svc.AddFavorite(ctx, domain.FavoriteEntry{ID: "p1"})

	snap := rec.Snapshot()
	if snap.Results["cart.add"]["success"] != 1 {
		t.Fatalf("cart.add not observed: %+v", snap.Results)
	}
	if snap.Results["favorites.add"]["success"] != 1 {
		t.Fatalf("favorites.add not observed: %+v", snap.Results)
	}
}

func TestNewIDIsUniqueHex(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		id := newID()
		if len(id) != 32 {
			t.Fatalf("id %q has unexpected length", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
