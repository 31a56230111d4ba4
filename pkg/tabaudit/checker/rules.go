package checker

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

//go:embed rules/*.json
var defaultRules embed.FS

// LoadRules returns the ordered rule list for a level. When dir is
// non-empty, <dir>/<level>.json overrides the embedded default; a dir
// without a file for the level falls back to the default.
func LoadRules(level model.Level, dir string) ([]model.RuleDescriptor, error) {
	if dir != "" {
		path := filepath.Join(dir, string(level)+".json")
		data, err := os.ReadFile(path)
		if err == nil {
			return parseRules(data, path)
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read rule file %q", path)
		}
	}

	name := fmt.Sprintf("rules/%s.json", level)
	data, err := defaultRules.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "no built-in rules for level %q", level)
	}
	return parseRules(data, name)
}

func parseRules(data []byte, source string) ([]model.RuleDescriptor, error) {
	var rules []model.RuleDescriptor
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, errors.Wrapf(err, "parse rule file %q", source)
	}
	for i, r := range rules {
		if r.ID == "" || r.Capability == "" {
			return nil, errors.Newf("rule %d in %q lacks id or capability", i, source)
		}
	}
	return rules, nil
}
