package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertThenFixXML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "scenes.yaml")
	jsonPath := filepath.Join(dir, "scenes.json")
	tourPath := filepath.Join(dir, "tour.xml")
	fixedPath := filepath.Join(dir, "fixed.xml")

	writeFile(t, yamlPath, "scenes:\n  - id: scene-a\n    title: Scene A\n    fixtures:\n      tub: {category: 1, model: 1}\n")
	writeFile(t, tourPath, `<krpano><scene name="scene-a"><image><sphere url="a.jpg"/></image></scene></krpano>`)

	if _, err := execute(t, "convert", "--scenes-yaml", yamlPath, "--out", jsonPath, "--product", filepath.Join("..", "..", "internal", "configurator", "testdata", configurator.ProductCatalogAsset)); err != nil {
		t.Fatalf("convert: %v", err)
	}
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read converted: %v", err)
	}
	cat, err := configurator.ParseSceneCatalog(raw)
	if err != nil {
		t.Fatalf("parse converted: %v", err)
	}
	if len(cat.Records) != 1 || cat.Records[0].SceneID != "scene-a" {
		t.Fatalf("converted records: got=%+v", cat.Records)
	}

	out, err := execute(t, "fix-xml", "--tour", tourPath, "--scenes", jsonPath, "--out", fixedPath, "--image-prefix", "https://cdn.test", "--strict")
	if err != nil {
		t.Fatalf("fix-xml: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"imagesRewritten": 1`) {
		t.Fatalf("report output: got=%s", out)
	}
	fixed, err := os.ReadFile(fixedPath)
	if err != nil {
		t.Fatalf("read fixed: %v", err)
	}
	for _, frag := range []string{`title="Scene A"`, `url="https://cdn.test/a.jpg"`} {
		if !strings.Contains(string(fixed), frag) {
			t.Fatalf("fixed xml missing %q: %s", frag, fixed)
		}
	}
}

func TestFixXMLStrictFailsOnUnmatched(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "scenes.json")
	tourPath := filepath.Join(dir, "tour.xml")
	writeFile(t, jsonPath, `[{"sceneId":"scene-b","title":"B","fixtures":{}}]`)
	writeFile(t, tourPath, `<krpano><scene name="scene-a"/></krpano>`)

	if _, err := execute(t, "fix-xml", "--tour", tourPath, "--scenes", jsonPath, "--out", filepath.Join(dir, "out.xml"), "--strict"); err == nil {
		t.Fatalf("expected --strict to fail")
	}
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}
