package sites

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/docsync-go/internal/domain"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for overrides files
var (
	// ErrFileNotFound indicates the overrides file does not exist
	ErrFileNotFound = errors.New("overrides file not found")

	// ErrInvalidFormat indicates the overrides file is not valid YAML or JSON
	ErrInvalidFormat = errors.New("overrides must be valid YAML or JSON")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported file extension (use .yaml, .yml, or .json)")
)

// Override adjusts one site's policy from a config file.
type Override struct {
	SitemapURL string `yaml:"sitemap_url" json:"sitemap_url"`
	OutputDir  string `yaml:"output_dir" json:"output_dir"`
	Disabled   bool   `yaml:"disabled" json:"disabled"`
}

// Overrides is the parsed sites override file, keyed by site name.
type Overrides struct {
	Sites map[string]Override `yaml:"sites" json:"sites"`
}

// LoadOverrides reads and parses a site overrides file
func LoadOverrides(path string) (*Overrides, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	return parseOverrides(data, filepath.Ext(path))
}

// parseOverrides parses overrides from raw bytes
func parseOverrides(data []byte, ext string) (*Overrides, error) {
	ext = strings.ToLower(ext)

	var o Overrides
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, ext)
	}

	if o.Sites == nil {
		o.Sites = make(map[string]Override)
	}

	return &o, nil
}

// Apply returns the policy with its override applied and whether the
// site is still enabled.
func (o *Overrides) Apply(policy domain.Policy) (domain.Policy, bool) {
	if o == nil {
		return policy, true
	}
	ov, ok := o.Sites[policy.Name]
	if !ok {
		return policy, true
	}
	if ov.Disabled {
		return policy, false
	}
	if ov.SitemapURL != "" {
		policy.SitemapURL = ov.SitemapURL
	}
	if ov.OutputDir != "" {
		policy.OutputDir = ov.OutputDir
	}
	return policy, true
}
