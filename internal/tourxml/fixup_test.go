package tourxml

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
)

const tourXML = `<?xml version="1.0" encoding="UTF-8"?>
<krpano version="1.21">
	<!-- generated -->
	<scene name="scene-a" title="old" thumburl="panos/a.tiles/thumb.jpg">
		<view hlookat="0" />
		<image>
			<cube url="https://old-cdn.example.com/panos/a.tiles/pano_%s.jpg" />
		</image>
		<hotspot name="tub" url="skin/hotspot.png" />
	</scene>
	<scene name="scene-orphan">
		<image><cube url="panos/orphan.tiles/pano_%s.jpg" /></image>
	</scene>
</krpano>`

func testScenes() configurator.SceneCatalog {
	return configurator.SceneCatalog{Records: []configurator.SceneRecord{
		{SceneID: "scene-a", Title: "Oval & white"},
		{SceneID: "scene-b", Title: "Freestanding black"},
	}}
}

func TestFixSetsTitleAndRewritesImages(t *testing.T) {
	var out bytes.Buffer
	report, err := Fix(strings.NewReader(tourXML), &out, testScenes(), Options{ImagePrefix: "https://cdn.test/tour/"})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}

	want := Report{
		Matched:          []string{"scene-a"},
		MissingInCatalog: []string{"scene-orphan"},
		MissingInTour:    []string{"scene-b"},
		ImagesRewritten:  1,
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	if report.Clean() {
		t.Fatalf("report.Clean: want=false got=true")
	}

	got := out.String()
	for _, frag := range []string{
		`title="Oval &amp; white"`,
		`url="https://cdn.test/tour/panos/a.tiles/pano_%s.jpg"`,
		`url="panos/orphan.tiles/pano_%s.jpg"`,
		`url="skin/hotspot.png"`,
		`<!-- generated -->`,
		`<?xml version="1.0" encoding="UTF-8"?>`,
	} {
		if !strings.Contains(got, frag) {
			t.Fatalf("output missing %q:\n%s", frag, got)
		}
	}
	if strings.Contains(got, `title="old"`) {
		t.Fatalf("old title kept:\n%s", got)
	}
}

func TestFixKeepTitlesAndNoPrefix(t *testing.T) {
	var out bytes.Buffer
	report, err := Fix(strings.NewReader(tourXML), &out, testScenes(), Options{KeepTitles: true})
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if report.ImagesRewritten != 0 {
		t.Fatalf("ImagesRewritten: want=0 got=%d", report.ImagesRewritten)
	}
	got := out.String()
	if !strings.Contains(got, `title="old"`) {
		t.Fatalf("existing title should survive:\n%s", got)
	}
	if !strings.Contains(got, `url="https://old-cdn.example.com/panos/a.tiles/pano_%s.jpg"`) {
		t.Fatalf("image url should be untouched:\n%s", got)
	}
}

func TestFixRejectsDocumentWithoutScenes(t *testing.T) {
	var out bytes.Buffer
	_, err := Fix(strings.NewReader(`<krpano><layer name="x"/></krpano>`), &out, testScenes(), Options{})
	if !errors.Is(err, ErrNotTourXML) {
		t.Fatalf("err: want=%v got=%v", ErrNotTourXML, err)
	}
}

func TestFixReportsMalformedXML(t *testing.T) {
	var out bytes.Buffer
	_, err := Fix(strings.NewReader(`<krpano><scene name="a"`), &out, testScenes(), Options{})
	if err == nil {
		t.Fatalf("expected error for truncated document")
	}
}

func TestWithPrefix(t *testing.T) {
	cases := []struct {
		prefix, raw, want string
	}{
		{"https://cdn.test/t", "panos/a.jpg", "https://cdn.test/t/panos/a.jpg"},
		{"https://cdn.test/t/", "./panos/a.jpg", "https://cdn.test/t/panos/a.jpg"},
		{"/api/files?key=", "/panos/a.jpg", "/api/files?key=/panos/a.jpg"},
		{"gs://tour", "http://host", "gs://tour/"},
		{"https://cdn.test", "https://old/x/pano_%s.jpg", "https://cdn.test/x/pano_%s.jpg"},
	}
	for _, tc := range cases {
		if got := withPrefix(tc.prefix, tc.raw); got != tc.want {
			t.Fatalf("withPrefix(%q, %q): want=%q got=%q", tc.prefix, tc.raw, tc.want, got)
		}
	}
}
