package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadVendors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vendors.yaml")
	body := `distributors:
  Asmodee:
    vendor_id: 1
    category_id: 17
    tax_class_id: 1
    new_tag_id: 8
  Randolph:
    vendor_id: 4
    category_id: 17
    tax_class_id: 1
    new_tag_id: 8
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	vendors, err := LoadVendors(path)
	if err != nil {
		t.Fatalf("LoadVendors: %v", err)
	}
	if len(vendors) != 2 {
		t.Fatalf("vendors = %d, want 2", len(vendors))
	}
	asmodee := vendors["Asmodee"]
	if asmodee.VendorID != 1 || asmodee.CategoryID != 17 || asmodee.NewTagID != 8 {
		t.Errorf("Asmodee = %+v", asmodee)
	}
}

func TestLoadVendorsRejectsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vendors.yaml")
	if err := os.WriteFile(path, []byte("distributors: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadVendors(path); err == nil {
		t.Fatal("expected empty mapping to fail")
	}
}

func TestLoadVendorsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadVendors(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}
