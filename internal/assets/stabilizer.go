package assets

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/entropy"
)

// AssetInfoSidecar is the small JSON file written next to a renamed
// asset whose rename was driven by a duplicate-original-filename
// collision rather than a case collision.
type AssetInfoSidecar struct {
	OriginalName string `json:"originalName"`
	NewFileName  string `json:"newFileName"`
	Path         string `json:"path"`
}

// Stabilizer performs a deterministic asset rename pass over a Table
// and a resource Manifest, recording every original filename it erases
// into Entropy so Restore can undo it exactly.
type Stabilizer struct {
	Table    *Table
	Manifest *Manifest
	Entropy  *entropy.Entropy
	// AssetInfoFiles accumulates the sidecar files produced by
	// StabilizeOnUnpack, keyed by the sidecar's own archive path
	// (<newName>.json next to the asset).
	AssetInfoFiles map[string]AssetInfoSidecar
}

// NewStabilizer builds a Stabilizer bound to the given table, manifest
// and entropy.
func NewStabilizer(table *Table, manifest *Manifest, ent *entropy.Entropy) *Stabilizer {
	return &Stabilizer{
		Table:          table,
		Manifest:       manifest,
		Entropy:        ent,
		AssetInfoFiles: make(map[string]AssetInfoSidecar),
	}
}

// StabilizeOnUnpack renames every LocalFile resource's underlying asset
// to <resourceName><originalExtension>, resolving case collisions and
// recording every rename's original name into Entropy.
func (s *Stabilizer) StabilizeOnUnpack(ec *diagnostics.ErrorContainer) error {
	refs := s.Manifest.Resources()
	// Sort ordinal by resource name so collision resolution is
	// deterministic regardless of manifest entry order: the later one,
	// sorted ordinal, is renamed.
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })

	assignedLower := make(map[string]string)     // lowercase new name -> actual new name
	originalToNew := make(map[string]string)     // original filename already renamed -> its new name
	seenOriginal := make(map[string]string)      // original filename -> first resource name that claimed it
	fingerprintToName := make(map[uint64]string) // content fingerprint -> name already assigned to it

	for _, ref := range refs {
		if ref.Kind != ResourceKindLocalFile {
			continue
		}
		original := ref.FileName

		// A second resource pointing at an original filename already
		// renamed this pass (a duplicate-original-filename collision)
		// shares that asset's new name rather than looking it up again —
		// the table entry under the old name no longer exists.
		if existingName, already := originalToNew[original]; already {
			if err := s.Manifest.SetFileName(ref.Index, existingName); err != nil {
				return err
			}
			s.Entropy.LocalResourceFileNames[ref.Name] = original
			continue
		}

		ext := extOf(original)
		candidate := ref.Name + ext

		blob, ok := s.Table.Get(original)
		if !ok {
			ec.Warn(diagnostics.CodeGenericWarning, "asset %q referenced by resource %q not found in archive", original, ref.Name)
			continue
		}

		// A colliding candidate whose content fingerprint matches an
		// already-placed asset is a true duplicate: point it at the
		// existing name instead of minting a fresh _<k> alias.
		if existingName, dup := fingerprintToName[blob.Fingerprint]; dup {
			s.Table.Delete(original)
			if err := s.Manifest.SetFileName(ref.Index, existingName); err != nil {
				return err
			}
			s.Entropy.LocalResourceFileNames[ref.Name] = original
			originalToNew[original] = existingName
			seenOriginal[original] = ref.Name
			continue
		}

		newName, collided := resolveCaseCollision(candidate, assignedLower)
		assignedLower[strings.ToLower(newName)] = newName
		fingerprintToName[blob.Fingerprint] = newName

		s.Table.Delete(original)
		s.Table.Put(newName, blob.Data, newName)

		s.Entropy.LocalResourceFileNames[ref.Name] = original
		originalToNew[original] = newName

		if collided {
			ec.Warn(diagnostics.CodeGenericWarning, "resource %q case-collided and was aliased to %q", ref.Name, newName)
		} else if firstClaimant, dup := seenOriginal[original]; dup && firstClaimant != ref.Name {
			info := AssetInfoSidecar{OriginalName: original, NewFileName: newName, Path: newName}
			s.AssetInfoFiles[newName+".json"] = info
		}
		seenOriginal[original] = ref.Name

		if err := s.Manifest.SetFileName(ref.Index, newName); err != nil {
			return err
		}
	}
	return nil
}

// resolveCaseCollision returns candidate unchanged unless its
// case-insensitive form is already assigned to a case-sensitively
// distinct name, in which case it appends _<k> for the least positive
// k that avoids any existing case-insensitive collision.
func resolveCaseCollision(candidate string, assignedLower map[string]string) (string, bool) {
	lower := strings.ToLower(candidate)
	existing, ok := assignedLower[lower]
	if !ok || existing == candidate {
		return candidate, false
	}
	ext := extOf(candidate)
	stem := strings.TrimSuffix(candidate, ext)
	for k := 1; ; k++ {
		alias := fmt.Sprintf("%s_%d%s", stem, k, ext)
		if _, taken := assignedLower[strings.ToLower(alias)]; !taken {
			return alias, true
		}
	}
}

func extOf(name string) string {
	return path.Ext(name)
}

// RestoreOnPack is the inverse of StabilizeOnUnpack: for each resource,
// if Entropy has an original name recorded, restore it; otherwise mint
// a fresh deterministic numeric name. The manifest is updated in place.
func (s *Stabilizer) RestoreOnPack(ec *diagnostics.ErrorContainer) error {
	refs := s.Manifest.Resources()
	for _, ref := range refs {
		if ref.Kind != ResourceKindLocalFile {
			continue
		}
		current := ref.FileName
		var target string
		if orig, ok := s.Entropy.LocalResourceFileNames[ref.Name]; ok {
			target = orig
		} else {
			target = s.Entropy.NextAssetNumericName() + extOf(current)
		}
		if target == current {
			continue
		}
		blob, ok := s.Table.Get(current)
		if !ok {
			ec.Warn(diagnostics.CodeGenericWarning, "asset %q for resource %q missing during pack", current, ref.Name)
			continue
		}
		s.Table.Delete(current)
		s.Table.Put(target, blob.Data, target)
		if err := s.Manifest.SetFileName(ref.Index, target); err != nil {
			return err
		}
	}
	return nil
}

// StabilizeLogo replaces the app logo's filename with logo<ext> and
// records the previous filename into Entropy.
func StabilizeLogo(table *Table, publishInfo json.RawMessage, ent *entropy.Entropy) (json.RawMessage, error) {
	name, ok := LogoFileName(publishInfo)
	if !ok || name == "" {
		return publishInfo, nil
	}
	ext := extOf(name)
	newName := "logo" + ext
	if blob, ok := table.Get(name); ok {
		table.Delete(name)
		table.Put(newName, blob.Data, newName)
	}
	ent.OldLogoFileName = name
	return SetLogoFileName(publishInfo, newName)
}

// RestoreLogo restores the logo's original filename from Entropy, when
// present.
func RestoreLogo(table *Table, publishInfo json.RawMessage, ent *entropy.Entropy) (json.RawMessage, error) {
	if ent.OldLogoFileName == "" {
		return publishInfo, nil
	}
	current, ok := LogoFileName(publishInfo)
	if !ok {
		return publishInfo, nil
	}
	if blob, ok := table.Get(current); ok {
		table.Delete(current)
		table.Put(ent.OldLogoFileName, blob.Data, ent.OldLogoFileName)
	}
	return SetLogoFileName(publishInfo, ent.OldLogoFileName)
}
