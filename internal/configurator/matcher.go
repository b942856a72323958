package configurator

// Match returns the first record in catalog order whose fixtures satisfy sel.
// ok is false when nothing matches; callers keep the scene they already show.
func Match(catalog SceneCatalog, sel Selection) (SceneRecord, bool) {
	i := MatchIndex(catalog, sel)
	if i < 0 {
		return SceneRecord{}, false
	}
	return catalog.Records[i], true
}

// MatchIndex is Match returning the record position, or -1.
func MatchIndex(catalog SceneCatalog, sel Selection) int {
	for i := range catalog.Records {
		if recordMatches(catalog.Records[i], sel) {
			return i
		}
	}
	return -1
}

// MatchAll returns the positions of every matching record, in catalog order.
func MatchAll(catalog SceneCatalog, sel Selection) []int {
	out := []int{}
	for i := range catalog.Records {
		if recordMatches(catalog.Records[i], sel) {
			out = append(out, i)
		}
	}
	return out
}

// Fixture types missing from sel are unconstrained. A fixture missing from
// the record has all-nil identifiers.
func recordMatches(rec SceneRecord, sel Selection) bool {
	for ft, want := range sel {
		if !fixtureMatches(rec.Fixtures[ft], want) {
			return false
		}
	}
	return true
}

func fixtureMatches(have, want FixtureSelection) bool {
	return idMatches(have.CategoryID, want.CategoryID) &&
		idMatches(have.ModelID, want.ModelID) &&
		idMatches(have.MaterialID, want.MaterialID) &&
		idMatches(have.ColorID, want.ColorID)
}

func idMatches(have, want *ID) bool {
	if want == nil {
		return true
	}
	return have != nil && *have == *want
}
