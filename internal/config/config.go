// Package config loads and validates paconv's project configuration,
// read from a ".paconv.kdl" file alongside the source tree or PKG
// being converted.
package config

// Config is the merged, defaulted configuration for one invocation.
type Config struct {
	Version int

	Project    Project
	Convert    Convert
	Assets     Assets
	Watch      Watch
	Suggest    Suggest
	Validation Validation

	// Include/Exclude are doublestar glob patterns. Exclude filters the
	// change events of the watch loop (cmd/paconv's watchAndReport); an
	// exclude list in .paconv.kdl replaces the built-in defaults.
	// Include is parsed but nothing reads it, and neither list filters
	// which files are packed or unpacked.
	Include []string
	Exclude []string
}

// Project describes the project root and its display name.
type Project struct {
	Root string
	Name string
}

// Convert holds the options of the convert section. They are parsed
// and validated, but no conversion stage reads them: Split/Combine
// always compare names case-ordinally, internal/assets.Stabilizer
// always uses a "_<n>" collision suffix, and Combine always rejects a
// property added to a component definition.
type Convert struct {
	// CaseSensitiveNames: case-ordinal control/template name
	// comparison (default true).
	CaseSensitiveNames bool

	// CollisionSuffixFormat is a printf-style pattern for colliding
	// shard filenames, e.g. "_%d" for "photo_1.png".
	CollisionSuffixFormat string

	// FailOnUnsupportedProperty: treat a property the template does
	// not recognize as fatal rather than a warning.
	FailOnUnsupportedProperty bool
}

// Assets holds the options of the assets section. They are parsed and
// validated, but nothing reads them: pack does not check asset sizes,
// and Loader.Load always runs the asset rename pass.
type Assets struct {
	// MaxSizeMB is a per-asset size limit in megabytes; zero is
	// replaced with DefaultMaxAssetSizeMB.
	MaxSizeMB int64

	// DeterministicRename selects "<resourceName><ext>" shard names for
	// renamed assets (see internal/assets.Stabilizer).
	DeterministicRename bool
}

// Watch controls the watch loop that the unpack and pack commands
// enter after converting when Enabled is set, and its debouncing.
type Watch struct {
	Enabled    bool
	DebounceMs int
}

// Suggest holds the options of the suggest section. They are parsed
// and validated, but nothing reads them: the near-miss name
// suggestions that ir.Combine attaches to its diagnostics use fixed
// settings.
type Suggest struct {
	Enabled        bool
	MaxSuggestions int
	MaxDistance    int
}

// Validation controls schema validation of source-tree shards before
// Combine runs.
type Validation struct {
	Enabled bool
	// SchemaPath is parsed but not read; internal/schema always uses
	// its built-in schemas.
	SchemaPath string
	StrictMode bool
}

// Default sizes, mirrored by parseKDL and setSmartDefaults.
const (
	DefaultMaxAssetSizeMB  = 64
	DefaultWatchDebounceMs = 300
	DefaultMaxSuggestions  = 3
	DefaultMaxDistance     = 2
)

// defaultConfig returns the baseline Config parseKDL starts from before
// overlaying anything found in a .paconv.kdl file.
func defaultConfig(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Convert: Convert{
			CaseSensitiveNames:    true,
			CollisionSuffixFormat: "_%d",
		},
		Assets: Assets{
			MaxSizeMB:           DefaultMaxAssetSizeMB,
			DeterministicRename: true,
		},
		Watch: Watch{
			Enabled:    false,
			DebounceMs: DefaultWatchDebounceMs,
		},
		Suggest: Suggest{
			Enabled:        true,
			MaxSuggestions: DefaultMaxSuggestions,
			MaxDistance:    DefaultMaxDistance,
		},
		Validation: Validation{
			Enabled: true,
		},
		Include: []string{},
		Exclude: []string{
			"**/.git/**",
			"**/.DS_Store",
			"**/Thumbs.db",
		},
	}
}

// Load reads and validates the .paconv.kdl configuration rooted at
// projectRoot, falling back to defaults when no file is present.
func Load(projectRoot string) (*Config, error) {
	return LoadWithOverride(projectRoot, "")
}

// LoadWithOverride is Load, but reads explicitPath instead of
// projectRoot/.paconv.kdl when explicitPath is non-empty — the CLI's
// --config flag.
func LoadWithOverride(projectRoot, explicitPath string) (*Config, error) {
	var cfg *Config
	var err error
	if explicitPath != "" {
		cfg, err = LoadKDLFromFile(explicitPath, projectRoot)
	} else {
		cfg, err = LoadKDL(projectRoot)
	}
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = defaultConfig(projectRoot)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
