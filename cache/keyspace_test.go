package cache

import (
	"reflect"
	"testing"
	"time"
)

func TestKeyFunctions(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"cart", CartKey("7"), "cart_7"},
		{"all products", AllProductsKey(), "all_products"},
		{"all customers", AllCustomersKey(), "all_customers"},
		{"customer statistics", CustomerStatisticsKey("7"), "customer_7_statistics"},
		{"all customer statistics", AllCustomerStatisticsKey(), "all_customers_statistics"},
		{"resource", ResourceKey("product", "42"), "resource:product:42"},
		{"collection", CollectionKey("customer"), "resource:customer:all"},
		{"stats", StatsKey("7"), "stats:7"},
		{"all stats", AllStatsKey(), "stats:all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %q but got %q", tt.want, tt.got)
			}
		})
	}
}

func TestKeyFunctionsAreDeterministic(t *testing.T) {
	if CartKey("abc") != CartKey("abc") || CustomerStatisticsKey("x") != CustomerStatisticsKey("x") {
		t.Error("keys must be pure functions of their inputs")
	}
}

func TestPolicyTTLFor(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		key  string
		want time.Duration
	}{
		{CartKey("7"), 3600 * time.Second},
		{AllProductsKey(), 2592000 * time.Second},
		{AllCustomersKey(), 600 * time.Second},
		{CustomerStatisticsKey("7"), 600 * time.Second},
		{AllCustomerStatisticsKey(), 600 * time.Second},
		{ResourceKey("product", "1"), 600 * time.Second},
	}

	for _, tt := range tests {
		if got := p.TTLFor(tt.key); got != tt.want {
			t.Errorf("TTLFor(%q): expected %v but got %v", tt.key, tt.want, got)
		}
	}
}

func TestPolicyTTLFor_ZeroFieldsFallBack(t *testing.T) {
	p := Policy{Default: 5 * time.Minute}
	if got := p.TTLFor(CartKey("1")); got != 5*time.Minute {
		t.Errorf("expected cart ttl to fall back to default, got %v", got)
	}
	if got := (Policy{}).TTLFor(AllCustomersKey()); got != DefaultTTL {
		t.Errorf("expected zero policy to use DefaultTTL, got %v", got)
	}
}

func TestFamily(t *testing.T) {
	tests := map[string]string{
		CartKey("9"):               "cart",
		AllProductsKey():           "all_products",
		AllCustomersKey():          "all_customers",
		CustomerStatisticsKey("9"): "customer_statistics",
		AllCustomerStatisticsKey(): "all_customers_statistics",
		ResourceKey("product", "1"): "resource",
		StatsKey("1"):              "stats",
		"something":                "other",
	}
	for key, want := range tests {
		if got := Family(key); got != want {
			t.Errorf("Family(%q): expected %q but got %q", key, want, got)
		}
	}
}

func TestCartScopeExcludesGlobalCollections(t *testing.T) {
	got := CartScope("A")
	want := []string{"cart_A", "customer_A_statistics"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v but got %v", want, got)
	}
	for _, key := range got {
		if key == AllProductsKey() || key == AllCustomersKey() || key == AllCustomerStatisticsKey() {
			t.Errorf("cart scope must not include %s", key)
		}
	}
}

func TestCustomerRemovalScope(t *testing.T) {
	got := CustomerRemovalScope("7")
	want := []string{"all_customers", "cart_7", "customer_7_statistics", "all_customers_statistics"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v but got %v", want, got)
	}
	if !reflect.DeepEqual(CustomerScope(), []string{"all_customers"}) {
		t.Errorf("unexpected customer scope %v", CustomerScope())
	}
	if got := CustomerScope("7"); !reflect.DeepEqual(got, []string{"all_customers", "cart_7"}) {
		t.Errorf("unexpected customer update scope %v", got)
	}
}

func TestProductScopeDeduplicates(t *testing.T) {
	got := ProductScope("1", "2", "1")
	want := []string{"all_products", "cart_1", "customer_1_statistics", "cart_2", "customer_2_statistics", "all_customers_statistics"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v but got %v", want, got)
	}
	if got := ProductScope(); !reflect.DeepEqual(got, []string{"all_products"}) {
		t.Errorf("expected catalog only without affected carts, got %v", got)
	}
}
