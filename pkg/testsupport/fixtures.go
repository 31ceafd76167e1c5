// Package testsupport carries the shared storefront fixtures and golden file
// helpers used across package tests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-storefront/model"
	"github.com/google/uuid"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set to "1".
const UpdateGoldenEnv = "STOREFRONT_UPDATE_GOLDEN"

// Fixed ids so snapshots and golden files stay byte-stable.
var (
	CartID        = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	CustomerAnnID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	CustomerBobID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	ProductAID    = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	ProductBID    = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	ProductCID    = uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc")
	IncentiveID   = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	CreatedAt = time.Date(2024, time.March, 1, 10, 20, 30, 0, time.UTC)
)

func ProductA() model.Product {
	return model.Product{ID: ProductAID, Code: "A", Title: "Apple", Price: 120}
}

func ProductB() model.Product {
	return model.Product{ID: ProductBID, Code: "B", Title: "Bread", Price: 250}
}

func ProductC() model.Product {
	return model.Product{ID: ProductCID, Code: "C", Title: "Cheese", Price: 480}
}

// Incentive is the free gift product.
func Incentive() model.Product {
	return model.Product{ID: IncentiveID, Code: "FREE", Title: "Free gift", Price: 0}
}

func CustomerAnn() model.Customer {
	return model.Customer{ID: CustomerAnnID, Email: "ann@example.com", PhoneNumber: "+15550100"}
}

func CustomerBob() model.Customer {
	return model.Customer{ID: CustomerBobID, Email: "bob@example.com", PhoneNumber: "+15550111"}
}

// Cart returns Ann's cart holding products in order.
func Cart(products ...model.Product) model.Cart {
	owner := CustomerAnn()
	return model.Cart{
		ID:         CartID,
		CustomerID: owner.ID,
		CreatedAt:  CreatedAt,
		Customer:   &owner,
		Products:   products,
	}
}

// LoadFixtureJSON reads path and unmarshals it into dest.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// CompareGoldenJSON encodes actual with two space indentation and compares it
// byte for byte against the golden file. A missing golden file is created.
func CompareGoldenJSON(t *testing.T, path string, actual any) {
	t.Helper()

	data, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal JSON for golden file %s: %v", path, err)
	}
	CompareWithGolden(t, path, data)
}

// CompareWithGolden compares actual with the golden file at path.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	switch {
	case os.Getenv(UpdateGoldenEnv) == "1", os.IsNotExist(err):
		t.Logf("writing golden file %s", path)
		writeGolden(t, path, actual)
		return
	case err != nil:
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

func writeGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
