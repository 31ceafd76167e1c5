package di

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/model"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type apiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	return resp.StatusCode, out
}

func cacheLookups(t *testing.T, gatherer prometheus.Gatherer, family, result string) float64 {
	t.Helper()
	families, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "storefront_cache_lookups_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue(m, "family") == family && labelValue(m, "result") == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// TestIntegration_CartStatisticsThroughHTTP drives the wired container over
// HTTP and checks that the second statistics read is served from the cache.
func TestIntegration_CartStatisticsThroughHTTP(t *testing.T) {
	container := newTestContainer(t, testConfig())
	server := httptest.NewServer(container.Handler())
	defer server.Close()
	client := server.Client()
	base := server.URL + "/api/v1"

	var product model.Product
	status, resp := doJSON(t, client, http.MethodPost, base+"/products", map[string]any{"code": "APL", "title": "Apple", "price": 120})
	if status != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d", status)
	}
	if err := json.Unmarshal(resp.Data, &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}

	var customer model.Customer
	status, resp = doJSON(t, client, http.MethodPost, base+"/customers", map[string]any{"email": "ann@example.com", "phoneNumber": "+15550100"})
	if status != http.StatusCreated {
		t.Fatalf("create customer: expected 201, got %d", status)
	}
	if err := json.Unmarshal(resp.Data, &customer); err != nil {
		t.Fatalf("decode customer: %v", err)
	}

	cartURL := fmt.Sprintf("%s/customers/%s/cart", base, customer.ID)
	if status, _ := doJSON(t, client, http.MethodPost, cartURL, map[string]any{"products": []string{product.ID.String()}}); status != http.StatusCreated {
		t.Fatalf("create cart: expected 201, got %d", status)
	}

	statsURL := fmt.Sprintf("%s/customers/%s/statistics", base, customer.ID)
	for i := 0; i < 2; i++ {
		status, resp := doJSON(t, client, http.MethodGet, statsURL, nil)
		if status != http.StatusOK {
			t.Fatalf("statistics read %d: expected 200, got %d", i, status)
		}
		var record struct {
			CartTotalCount int64 `json:"cartTotalCount"`
			CartTotalPrice int64 `json:"cartTotalPrice"`
		}
		if err := json.Unmarshal(resp.Data, &record); err != nil {
			t.Fatalf("decode statistics: %v", err)
		}
		if record.CartTotalCount != 1 || record.CartTotalPrice != 120 {
			t.Errorf("unexpected statistics %+v", record)
		}
	}

	gatherer := container.Recorder().Gatherer()
	if got := cacheLookups(t, gatherer, "customer_statistics", "miss"); got != 1 {
		t.Errorf("expected 1 statistics miss, got %v", got)
	}
	if got := cacheLookups(t, gatherer, "customer_statistics", "hit"); got != 1 {
		t.Errorf("expected 1 statistics hit, got %v", got)
	}

	// a product price change reaches the cached statistics of carts holding it
	status, _ = doJSON(t, client, http.MethodPatch, fmt.Sprintf("%s/products/%s", base, product.ID), map[string]any{"price": 200})
	if status != http.StatusOK {
		t.Fatalf("patch product: expected 200, got %d", status)
	}
	_, resp = doJSON(t, client, http.MethodGet, statsURL, nil)
	var updated struct {
		CartTotalPrice int64 `json:"cartTotalPrice"`
	}
	if err := json.Unmarshal(resp.Data, &updated); err != nil {
		t.Fatalf("decode statistics: %v", err)
	}
	if updated.CartTotalPrice != 200 {
		t.Errorf("expected refreshed price 200, got %d", updated.CartTotalPrice)
	}
}

// TestIntegration_ConcurrentReads exercises concurrent misses and hits on the
// same keys; every reader must see the stored data.
func TestIntegration_ConcurrentReads(t *testing.T) {
	container := newTestContainer(t, testConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		p := &model.Product{Code: fmt.Sprintf("P%02d", i), Title: fmt.Sprintf("Product %d", i), Price: int64(i * 10)}
		if _, err := container.Products().Save(ctx, p); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := container.Products().List(ctx)
			if err != nil {
				errs <- err
				return
			}
			if len(products) != 10 {
				errs <- fmt.Errorf("expected 10 products, got %d", len(products))
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if _, found, err := container.CachePort().Get(ctx, cache.AllProductsKey()); err != nil || !found {
		t.Errorf("expected all_products to be cached, found=%v err=%v", found, err)
	}
}
