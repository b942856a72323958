package configurator

import (
	"bytes"
	"encoding/json"
)

// OptionalID distinguishes an absent JSON field (Set=false) from an explicit null.
type OptionalID struct {
	Set   bool
	Value *ID
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id ID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id == "" {
		o.Value = nil
		return nil
	}
	o.Value = &id
	return nil
}

func SetID(s string) OptionalID { return OptionalID{Set: true, Value: IDPtr(s)} }

func ClearID() OptionalID { return OptionalID{Set: true} }

type OptionalIndex struct {
	Set   bool
	Value *int
}

func (o *OptionalIndex) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return err
	}
	o.Value = &i
	return nil
}

// FixturePatch updates one fixture. Index fields address catalog options and
// are turned into identifiers by ResolvePatch before Update applies them.
type FixturePatch struct {
	CategoryID OptionalID `json:"categoryId"`
	ModelID    OptionalID `json:"modelId"`
	MaterialID OptionalID `json:"materialId"`
	ColorID    OptionalID `json:"colorId"`

	ModelIndex    OptionalIndex `json:"modelIndex"`
	MaterialIndex OptionalIndex `json:"materialIndex"`
	ColorIndex    OptionalIndex `json:"colorIndex"`
}

func (p FixturePatch) HasIndexes() bool {
	return p.ModelIndex.Set || p.MaterialIndex.Set || p.ColorIndex.Set
}

func (p FixturePatch) IsEmpty() bool {
	return !p.HasIndexes() && !p.CategoryID.Set && !p.ModelID.Set && !p.MaterialID.Set && !p.ColorID.Set
}

// Update returns a new Selection with patch merged into fixture's entry. The
// receiver is not modified and every other entry is carried over as is.
// Identifiers are not checked against any catalog.
func (s Selection) Update(fixture FixtureType, patch FixturePatch) Selection {
	out := s.clone()
	cur := out[fixture]
	apply(&cur.CategoryID, patch.CategoryID)
	apply(&cur.ModelID, patch.ModelID)
	apply(&cur.MaterialID, patch.MaterialID)
	apply(&cur.ColorID, patch.ColorID)
	out[fixture] = cur
	return out
}

func apply(dst **ID, o OptionalID) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}
