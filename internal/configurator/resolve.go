package configurator

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFixture  = errors.New("unknown fixture")
	ErrIndexOutOfRange = errors.New("option index out of range")
	ErrParentRequired  = errors.New("parent option not selected")
)

// IndexError reports which index of a patch could not be resolved.
type IndexError struct {
	Field string
	Index int
	Len   int
	Err   error
}

func (e *IndexError) Error() string {
	if errors.Is(e.Err, ErrParentRequired) {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %d: %v (have %d)", e.Field, e.Index, e.Err, e.Len)
}

func (e *IndexError) Unwrap() error { return e.Err }

// ResolvePatch turns index fields into identifiers using the product catalog.
// Material and color indexes are relative to the model and material the patch
// selects, falling back to current. Choosing a model by index clears material
// and color unless the patch sets them too.
func ResolvePatch(catalog ProductCatalog, fixture FixtureType, current FixtureSelection, patch FixturePatch) (FixturePatch, error) {
	out := patch
	out.ModelIndex, out.MaterialIndex, out.ColorIndex = OptionalIndex{}, OptionalIndex{}, OptionalIndex{}
	if !patch.HasIndexes() {
		return out, nil
	}
	fc, ok := catalog.Fixture(fixture)
	if !ok {
		return FixturePatch{}, fmt.Errorf("%w: %s", ErrUnknownFixture, fixture)
	}

	if patch.ModelIndex.Set {
		if patch.ModelIndex.Value == nil {
			out.ModelID = ClearID()
		} else {
			i := *patch.ModelIndex.Value
			if i < 0 || i >= len(fc.Models) {
				return FixturePatch{}, &IndexError{Field: "modelIndex", Index: i, Len: len(fc.Models), Err: ErrIndexOutOfRange}
			}
			out.ModelID = SetID(string(fc.Models[i].ID))
			if !out.CategoryID.Set {
				out.CategoryID = SetID(string(fc.CategoryID))
			}
			if !out.MaterialID.Set && !patch.MaterialIndex.Set {
				out.MaterialID = ClearID()
			}
			if !out.ColorID.Set && !patch.ColorIndex.Set {
				out.ColorID = ClearID()
			}
		}
	}

	if patch.MaterialIndex.Set {
		if patch.MaterialIndex.Value == nil {
			out.MaterialID = ClearID()
		} else {
			i := *patch.MaterialIndex.Value
			model, ok := fc.Model(effectiveID(out.ModelID, current.ModelID))
			if !ok {
				return FixturePatch{}, &IndexError{Field: "materialIndex", Index: i, Err: ErrParentRequired}
			}
			if i < 0 || i >= len(model.Materials) {
				return FixturePatch{}, &IndexError{Field: "materialIndex", Index: i, Len: len(model.Materials), Err: ErrIndexOutOfRange}
			}
			out.MaterialID = SetID(string(model.Materials[i].ID))
			if !out.ColorID.Set && !patch.ColorIndex.Set {
				out.ColorID = ClearID()
			}
		}
	}

	if patch.ColorIndex.Set {
		if patch.ColorIndex.Value == nil {
			out.ColorID = ClearID()
		} else {
			i := *patch.ColorIndex.Value
			model, ok := fc.Model(effectiveID(out.ModelID, current.ModelID))
			var material Material
			if ok {
				material, ok = model.Material(effectiveID(out.MaterialID, current.MaterialID))
			}
			if !ok {
				return FixturePatch{}, &IndexError{Field: "colorIndex", Index: i, Err: ErrParentRequired}
			}
			if i < 0 || i >= len(material.Colors) {
				return FixturePatch{}, &IndexError{Field: "colorIndex", Index: i, Len: len(material.Colors), Err: ErrIndexOutOfRange}
			}
			out.ColorID = SetID(string(material.Colors[i].ID))
		}
	}
	return out, nil
}

// effectiveID is the identifier after the patch applies; "" when none.
func effectiveID(patched OptionalID, current *ID) ID {
	if patched.Set {
		if patched.Value == nil {
			return ""
		}
		return *patched.Value
	}
	if current == nil {
		return ""
	}
	return *current
}
