package configurator

import (
	"context"
	"testing"
)

func loadTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := Load(context.Background(), DirSource{Dir: "testdata"})
	if err != nil {
		t.Fatalf("Load(testdata): %v", err)
	}
	return snap
}

func fx(category, model, material, color string) FixtureSelection {
	ptr := func(s string) *ID {
		if s == "" {
			return nil
		}
		return IDPtr(s)
	}
	return FixtureSelection{
		CategoryID: ptr(category),
		ModelID:    ptr(model),
		MaterialID: ptr(material),
		ColorID:    ptr(color),
	}
}

func index(i int) OptionalIndex { return OptionalIndex{Set: true, Value: &i} }
