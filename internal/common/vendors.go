package common

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vendor maps a distributor to its Lightspeed vendor record and the defaults
// used when creating catalog items sourced from that distributor.
type Vendor struct {
	VendorID   int `yaml:"vendor_id"`
	CategoryID int `yaml:"category_id"`
	TaxClassID int `yaml:"tax_class_id"`
	NewTagID   int `yaml:"new_tag_id"`
}

type vendorsFile struct {
	Distributors map[string]Vendor `yaml:"distributors"`
}

// LoadVendors reads the distributor→vendor mapping from a YAML file.
func LoadVendors(path string) (map[string]Vendor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vendors file: %w", err)
	}
	var vf vendorsFile
	if err := yaml.Unmarshal(raw, &vf); err != nil {
		return nil, fmt.Errorf("parse vendors file: %w", err)
	}
	if len(vf.Distributors) == 0 {
		return nil, NewAppError("CONFIG_ERROR", "vendors file has no distributors", ErrInvalidInput)
	}
	return vf.Distributors, nil
}
