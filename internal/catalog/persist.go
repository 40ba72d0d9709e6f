package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// cacheSchema guards cache loads against hand-edited or truncated files. A
// file that fails validation is rejected rather than partially loaded.
const cacheSchemaJSON = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["itemID", "description"],
    "properties": {
      "itemID": {"type": "integer", "minimum": 1},
      "description": {"type": "string"},
      "sku": {"type": "string"},
      "manufacturerSKU": {"type": "string"},
      "price": {"type": ["number", "string"]},
      "defaultCost": {"type": ["number", "string"]},
      "categoryID": {"type": "integer"},
      "archived": {"type": "boolean"},
      "tag": {"type": ["array", "null"], "items": {"type": "string"}}
    }
  }
}`

var cacheSchema = jsonschema.MustCompileString("catalog_cache.schema.json", cacheSchemaJSON)

// Load replaces the cache contents with the mapping stored at path. A
// missing file is reported via common.ErrNotFound so callers can decide
// between rebuilding and failing.
func (c *Cache) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return common.NewAppError("CACHE_MISSING", fmt.Sprintf("no cache file at %s", path), common.ErrNotFound)
		}
		return common.WrapError(err, "read cache file")
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return common.NewAppError("CACHE_CORRUPT", "cache file is not valid JSON", err)
	}
	if err := cacheSchema.Validate(generic); err != nil {
		return common.NewAppError("CACHE_INVALID", "cache file failed schema validation", err)
	}

	entries := make(map[string]entity.CatalogEntry)
	if err := json.Unmarshal(raw, &entries); err != nil {
		return common.NewAppError("CACHE_CORRUPT", "cache file does not decode", err)
	}
	c.entries = entries
	c.logger.Info("catalog cache loaded", "path", path, "entries", len(entries))
	return nil
}

// Save writes the cache to path, preserving the previous file as a
// timestamped backup first.
func (c *Cache) Save(path string) error {
	if _, err := os.Stat(path); err == nil {
		backup := fmt.Sprintf("%s.backup_%s", path, time.Now().Format("20060102_150405"))
		if err := os.Rename(path, backup); err != nil {
			return common.WrapError(err, "back up previous cache")
		}
		c.logger.Info("previous cache backed up", "backup", backup)
	}

	raw, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return common.WrapError(err, "encode cache")
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return common.WrapError(err, "write cache file")
	}
	c.logger.Info("catalog cache saved", "path", path, "entries", len(c.entries))
	return nil
}
