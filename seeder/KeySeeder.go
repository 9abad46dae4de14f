package seeder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"keyportal/model"
	"keyportal/repository"
	"keyportal/service"
)

// keysFileSchema accepts both the legacy {secret, used} entries and the
// current {secret, max_uses, usage_count, ...} ones.
const keysFileSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["secret"],
		"properties": {
			"secret":      {"type": "string", "minLength": 16},
			"used":        {"type": "boolean"},
			"max_uses":    {"type": "integer", "minimum": -1, "not": {"const": 0}},
			"usage_count": {"type": "integer", "minimum": 0},
			"created_at":  {"type": "string", "format": "date-time"},
			"last_used":   {"type": ["string", "null"], "format": "date-time"}
		}
	}
}`

var schema = mustSchema(keysFileSchema)

func mustSchema(s string) *gojsonschema.Schema {
	sch, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("keys file schema: %v", err))
	}
	return sch
}

type fileEntry struct {
	Secret     string     `json:"secret"`
	Used       *bool      `json:"used,omitempty"`
	MaxUses    *int       `json:"max_uses,omitempty"`
	UsageCount *int       `json:"usage_count,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
}

// ParseKeys validates a keys file and converts it to access keys, sorted by name.
func ParseKeys(data []byte) ([]*model.AccessKey, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("keys file is not valid JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("keys file does not match schema: %s", strings.Join(msgs, "; "))
	}

	var entries map[string]fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode keys file: %w", err)
	}

	keys := make([]*model.AccessKey, 0, len(entries))
	for name, e := range entries {
		keys = append(keys, e.toModel(name))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys, nil
}

func (e fileEntry) toModel(name string) *model.AccessKey {
	k := &model.AccessKey{Name: name, Secret: e.Secret, MaxUses: 1, LastUsedAt: e.LastUsed}

	// legacy single-use entries only carry a "used" flag
	if e.MaxUses == nil && e.Used != nil && *e.Used {
		k.UsageCount = 1
	}
	if e.MaxUses != nil {
		k.MaxUses = *e.MaxUses
	}
	if e.UsageCount != nil {
		k.UsageCount = *e.UsageCount
	}
	if e.CreatedAt != nil {
		k.CreatedAt = *e.CreatedAt
	}
	return k
}

type Result struct {
	Imported int
	Skipped  int
}

// SeedKeys imports every key of the file at path. Keys that already exist are left untouched.
func SeedKeys(admin *service.KeyAdminService, path string, log *zap.Logger) (Result, error) {
	var res Result

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("read keys file: %w", err)
	}
	keys, err := ParseKeys(data)
	if err != nil {
		return res, err
	}

	log.Info("seeding keys", zap.String("file", path), zap.Int("count", len(keys)))
	for _, k := range keys {
		err := admin.ImportKey(k)
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, repository.ErrKeyExists):
			res.Skipped++
		default:
			return res, fmt.Errorf("import key %s: %w", k.Name, err)
		}
	}
	log.Info("key seeding completed", zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped))
	return res, nil
}

// ExportKeys writes keys in the same file format SeedKeys reads.
func ExportKeys(w io.Writer, keys []model.AccessKey) error {
	out := make(map[string]fileEntry, len(keys))
	for _, k := range keys {
		maxUses, usage, created := k.MaxUses, k.UsageCount, k.CreatedAt.UTC()
		out[k.Name] = fileEntry{
			Secret:     k.Secret,
			MaxUses:    &maxUses,
			UsageCount: &usage,
			CreatedAt:  &created,
			LastUsed:   k.LastUsedAt,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
