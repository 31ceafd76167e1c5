package cache

import (
	"strings"
	"time"
)

// KeySeparator joins the segments of generic resource keys.
const KeySeparator = ":"

const (
	keyAllProducts           = "all_products"
	keyAllCustomers          = "all_customers"
	keyAllCustomerStatistics = "all_customers_statistics"
	cartKeyPrefix            = "cart_"
	customerKeyPrefix        = "customer_"
	customerStatisticsSuffix = "_statistics"
	resourceKeyPrefix        = "resource"
	statsKeyPrefix           = "stats"
	collectionKeySegment     = "all"
)

// TTLs applied by DefaultPolicy.
const (
	DefaultTTL           = 600 * time.Second
	CartTTL              = time.Hour
	ProductCollectionTTL = 30 * 24 * time.Hour
)

// CartKey addresses the cached snapshot of a customer's cart.
func CartKey(customerID string) string {
	return cartKeyPrefix + customerID
}

// AllProductsKey addresses the cached product catalog.
func AllProductsKey() string {
	return keyAllProducts
}

// AllCustomersKey addresses the cached customer collection.
func AllCustomersKey() string {
	return keyAllCustomers
}

// CustomerStatisticsKey addresses the flattened statistics of one customer.
func CustomerStatisticsKey(customerID string) string {
	return customerKeyPrefix + customerID + customerStatisticsSuffix
}

// AllCustomerStatisticsKey addresses the statistics of every customer with a cart.
func AllCustomerStatisticsKey() string {
	return keyAllCustomerStatistics
}

// ResourceKey builds resource:{kind}:{id} for kinds outside the fixed table.
// kind is used as given; callers pass lower snake_case names.
func ResourceKey(kind, id string) string {
	return strings.Join([]string{resourceKeyPrefix, kind, id}, KeySeparator)
}

// CollectionKey builds resource:{kind}:all.
func CollectionKey(kind string) string {
	return ResourceKey(kind, collectionKeySegment)
}

// StatsKey builds stats:{id}.
func StatsKey(id string) string {
	return statsKeyPrefix + KeySeparator + id
}

// AllStatsKey builds stats:all.
func AllStatsKey() string {
	return StatsKey(collectionKeySegment)
}

// Policy maps keys to their time-to-live.
type Policy struct {
	Default           time.Duration
	Cart              time.Duration
	ProductCollection time.Duration
}

// DefaultPolicy returns the TTL table used in production.
func DefaultPolicy() Policy {
	return Policy{
		Default:           DefaultTTL,
		Cart:              CartTTL,
		ProductCollection: ProductCollectionTTL,
	}
}

// TTLFor resolves the TTL of a concrete key. Unknown keys use Default.
func (p Policy) TTLFor(key string) time.Duration {
	switch {
	case key == keyAllProducts:
		return orDefault(p.ProductCollection, p.Default)
	case strings.HasPrefix(key, cartKeyPrefix):
		return orDefault(p.Cart, p.Default)
	default:
		return orDefault(p.Default, DefaultTTL)
	}
}

func orDefault(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTTL
}

// Family reduces a key to a low-cardinality label for metrics and logs.
func Family(key string) string {
	switch {
	case key == keyAllProducts, key == keyAllCustomers, key == keyAllCustomerStatistics:
		return key
	case strings.HasPrefix(key, cartKeyPrefix):
		return "cart"
	case strings.HasPrefix(key, customerKeyPrefix) && strings.HasSuffix(key, customerStatisticsSuffix):
		return "customer_statistics"
	case strings.HasPrefix(key, resourceKeyPrefix+KeySeparator):
		return resourceKeyPrefix
	case strings.HasPrefix(key, statsKeyPrefix+KeySeparator):
		return statsKeyPrefix
	default:
		return "other"
	}
}

// CartScope lists the keys a cart write for customerID can leave stale.
// Global collections are not included.
func CartScope(customerID string) []string {
	return []string{CartKey(customerID), CustomerStatisticsKey(customerID)}
}

// CustomerScope lists the keys a customer create or update can leave stale.
// Updates also drop the customer's cart, whose snapshot embeds the customer.
func CustomerScope(updatedCustomerIDs ...string) []string {
	keys := []string{AllCustomersKey()}
	for _, id := range updatedCustomerIDs {
		keys = append(keys, CartKey(id))
	}
	return dedupeStrings(keys)
}

// CustomerRemovalScope covers the customer collection plus everything derived
// from the removed customer's cart.
func CustomerRemovalScope(customerID string) []string {
	keys := []string{AllCustomersKey()}
	keys = append(keys, CartScope(customerID)...)
	return append(keys, AllCustomerStatisticsKey())
}

// ProductScope covers the catalog plus the carts embedding the product. When
// any cart is affected the global statistics go too, since their totals are
// priced from products.
func ProductScope(affectedCustomerIDs ...string) []string {
	keys := []string{AllProductsKey()}
	for _, id := range affectedCustomerIDs {
		keys = append(keys, CartScope(id)...)
	}
	if len(affectedCustomerIDs) > 0 {
		keys = append(keys, AllCustomerStatisticsKey())
	}
	return dedupeStrings(keys)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
