package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/paconv/paconv/internal/config"
	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/dsl"
	"github.com/paconv/paconv/internal/layout"
	"github.com/paconv/paconv/internal/model"
	"github.com/paconv/paconv/internal/pkgio"
	"github.com/paconv/paconv/internal/schema"
	"github.com/paconv/paconv/internal/template"
	"github.com/paconv/paconv/internal/version"
	"github.com/paconv/paconv/internal/watch"
)

// Exit codes: 0 success, 1 diagnostics with errors, 2 usage.
const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

var (
	verbose    bool
	configPath string
)

func main() {
	app := &cli.App{
		Name:                   "paconv",
		Usage:                  "Convert between PKG archives and editable source trees",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to .paconv.kdl (defaults to one alongside the project root)",
				Destination: &configPath,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "Raise the diagnostics floor from ValidationWarning to GenericWarning",
				Destination: &verbose,
			},
		},
		Commands: []*cli.Command{
			unpackCommand(),
			packCommand(),
			makeCommand(),
			testCommand(),
			testallCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "paconv: %v\n", err)
		if _, ok := err.(usageError); ok {
			os.Exit(exitUsage)
		}
		os.Exit(exitFailure)
	}
}

// usageError marks an error as CLI misuse (exit 2) rather than a
// diagnostics failure (exit 1).
type usageError struct{ error }

func newUsageError(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func unpackCommand() *cli.Command {
	return &cli.Command{
		Name:      "unpack",
		Usage:     "Expand a PKG archive into an editable source tree",
		ArgsUsage: "<pkg> [<outDir>]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return newUsageError("unpack requires a <pkg> argument")
			}
			pkgPath := c.Args().Get(0)
			outDir := c.Args().Get(1)
			if outDir == "" {
				outDir = strings.TrimSuffix(pkgPath, filepath.Ext(pkgPath)) + "_src"
			}
			return runUnpack(pkgPath, outDir)
		},
	}
}

func packCommand() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "Rebuild a PKG archive from a source tree",
		ArgsUsage: "<pkg> <srcDir>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return newUsageError("pack requires <pkg> and <srcDir> arguments")
			}
			return runPack(c.Args().Get(1), c.Args().Get(0))
		},
	}
}

func makeCommand() *cli.Command {
	return &cli.Command{
		Name:      "make",
		Usage:     "Synthesize a new PKG from raw text DSL and stock templates",
		ArgsUsage: "<pkg> <pkgsDir> <paFile>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return newUsageError("make requires <pkg>, <pkgsDir>, and <paFile> arguments")
			}
			return runMake(c.Args().Get(0), c.Args().Get(1), c.Args().Get(2))
		},
	}
}

func testCommand() *cli.Command {
	return &cli.Command{
		Name:      "test",
		Usage:     "Round-trip one PKG and verify its checksum is preserved",
		ArgsUsage: "<pkg>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return newUsageError("test requires a <pkg> argument")
			}
			ok, err := roundTripOne(c.Args().Get(0))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("checksum mismatch after round trip")
			}
			fmt.Println("PASS")
			return nil
		},
	}
}

func testallCommand() *cli.Command {
	return &cli.Command{
		Name:      "testall",
		Usage:     "Round-trip every *.msapp in a directory and print a pass count",
		ArgsUsage: "<dir>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return newUsageError("testall requires a <dir> argument")
			}
			dir := c.Args().Get(0)
			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("reading %s: %w", dir, err)
			}
			passed, total := 0, 0
			for _, e := range entries {
				if e.IsDir() || !strings.HasSuffix(e.Name(), ".msapp") {
					continue
				}
				total++
				ok, err := roundTripOne(filepath.Join(dir, e.Name()))
				if err != nil {
					fmt.Printf("FAIL %s: %v\n", e.Name(), err)
					continue
				}
				if ok {
					passed++
					fmt.Printf("PASS %s\n", e.Name())
				} else {
					fmt.Printf("FAIL %s: checksum mismatch\n", e.Name())
				}
			}
			fmt.Printf("%d/%d passed\n", passed, total)
			if passed != total {
				return fmt.Errorf("%d of %d round trips failed", total-passed, total)
			}
			return nil
		},
	}
}

func loadProjectConfig(root string) (*config.Config, error) {
	cfg, err := config.LoadWithOverride(root, configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func reportDiagnostics(ec *diagnostics.ErrorContainer) {
	for _, d := range ec.Items() {
		if d.Severity == diagnostics.SeverityWarning && d.Code != diagnostics.CodeValidationWarning && !verbose {
			continue
		}
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func newValidator(cfg *config.Config) (*schema.Validator, error) {
	if !cfg.Validation.Enabled {
		return nil, nil
	}
	return schema.New(cfg.Validation.StrictMode)
}

func runUnpack(pkgPath, outDir string) error {
	pkgBytes, err := os.ReadFile(pkgPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", pkgPath, err)
	}
	cfg, err := loadProjectConfig(outDir)
	if err != nil {
		return err
	}
	validator, err := newValidator(cfg)
	if err != nil {
		return err
	}

	ec := diagnostics.New()
	loader, err := pkgio.NewLoader(pkgBytes)
	if err != nil {
		return fmt.Errorf("reading archive %s: %w", pkgPath, err)
	}
	loader.Schema = validator
	doc, err := loader.Load(ec)
	reportDiagnostics(ec)
	if err != nil {
		return err
	}

	if err := layout.WriteTree(outDir, doc, ec); err != nil {
		reportDiagnostics(ec)
		return err
	}
	reportDiagnostics(ec)

	if cfg.Watch.Enabled {
		return watchAndReport(pkgPath, "unpack", cfg)
	}
	return nil
}

func runPack(srcDir, pkgPath string) error {
	cfg, err := loadProjectConfig(srcDir)
	if err != nil {
		return err
	}
	validator, err := newValidator(cfg)
	if err != nil {
		return err
	}

	ec := diagnostics.New()
	doc, err := layout.ReadTree(srcDir, validator, ec)
	reportDiagnostics(ec)
	if err != nil {
		return err
	}

	w := pkgio.NewWriter(doc)
	pkgBytes, err := w.WritePkg(ec)
	reportDiagnostics(ec)
	if err != nil {
		return err
	}

	if err := os.WriteFile(pkgPath, pkgBytes, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", pkgPath, err)
	}

	if cfg.Watch.Enabled {
		return watchAndReport(srcDir, "pack", cfg)
	}
	return nil
}

// runMake builds a fresh single-screen PKG from one text-DSL file plus
// a directory of stock template JSON files, for synthesizing a minimal
// PKG without an existing source tree or archive to start from.
func runMake(pkgPath, pkgsDir, paFile string) error {
	ec := diagnostics.New()

	store := template.NewStore()
	entries, err := os.ReadDir(pkgsDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", pkgsDir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(pkgsDir, e.Name()))
		if err != nil {
			return fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		var t model.TemplateState
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("parsing template %s: %w", e.Name(), err)
		}
		store.Put(&t)
	}

	paText, err := os.ReadFile(paFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", paFile, err)
	}
	block, err := dsl.Parse(string(paText))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", paFile, err)
	}

	doc := model.New()
	doc.FormatVersion = fmt.Sprintf("%d.%d", pkgio.CurrentFormatVersionMajor, pkgio.CurrentFormatVersionMinor)
	doc.ScreenOrder = []string{block.Name.Identifier}
	doc.Screens[block.Name.Identifier] = block
	doc.Templates = store.All()

	w := pkgio.NewWriter(doc)
	pkgBytes, err := w.WritePkg(ec)
	reportDiagnostics(ec)
	if err != nil {
		return err
	}
	return os.WriteFile(pkgPath, pkgBytes, 0o644)
}

// roundTripOne loads a PKG, writes it back out in memory, and compares
// checksums. The two archives need not be byte-identical (ZIP
// compression is non-deterministic), only their canonicalized entry
// checksums need to match.
func roundTripOne(pkgPath string) (bool, error) {
	pkgBytes, err := os.ReadFile(pkgPath)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", pkgPath, err)
	}
	originalChecksum, err := pkgio.ChecksumOf(pkgBytes)
	if err != nil {
		return false, fmt.Errorf("checksumming %s: %w", pkgPath, err)
	}

	ec := diagnostics.New()
	loader, err := pkgio.NewLoader(pkgBytes)
	if err != nil {
		return false, fmt.Errorf("reading archive %s: %w", pkgPath, err)
	}
	doc, err := loader.Load(ec)
	reportDiagnostics(ec)
	if err != nil {
		return false, err
	}

	w := pkgio.NewWriter(doc)
	rewritten, err := w.WritePkg(ec)
	reportDiagnostics(ec)
	if err != nil {
		return false, err
	}

	rewrittenChecksum, err := pkgio.ChecksumOf(rewritten)
	if err != nil {
		return false, fmt.Errorf("checksumming round-tripped archive: %w", err)
	}

	return originalChecksum == rewrittenChecksum, nil
}

func watchAndReport(path, op string, cfg *config.Config) error {
	w, err := watch.New(path, cfg.Exclude, time.Duration(cfg.Watch.DebounceMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("starting watch on %s: %w", path, err)
	}
	w.OnChange = func(paths []string) {
		fmt.Printf("%s: %d path(s) changed, rerun %s to apply\n", path, len(paths), op)
	}
	w.OnError = func(err error) {
		fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
	}
	if err := w.Start(); err != nil {
		return err
	}
	select {}
}
