package tourxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
)

// Options controls how a tour XML document is rewritten.
type Options struct {
	// ImagePrefix replaces the location of every url attribute inside a
	// matched scene's <image> element. Empty leaves image URLs alone.
	ImagePrefix string
	// KeepTitles leaves an existing title attribute untouched.
	KeepTitles bool
}

// Report lists how the XML scenes lined up with the scene catalog.
type Report struct {
	Matched          []string `json:"matched"`
	MissingInCatalog []string `json:"missingInCatalog"`
	MissingInTour    []string `json:"missingInTour"`
	ImagesRewritten  int      `json:"imagesRewritten"`
}

func (r Report) Clean() bool {
	return len(r.MissingInCatalog) == 0 && len(r.MissingInTour) == 0
}

var ErrNotTourXML = errors.New("no <scene> elements found")

// Fix streams the tour document from r to w, setting the title of every
// <scene name=...> that has a catalog record and rewriting its image URLs.
// Everything else is copied token by token.
func Fix(r io.Reader, w io.Writer, scenes configurator.SceneCatalog, opts Options) (Report, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	enc := xml.NewEncoder(w)

	byID := make(map[string]configurator.SceneRecord, len(scenes.Records))
	for _, rec := range scenes.Records {
		byID[rec.SceneID] = rec
	}

	var (
		report     Report
		seen       = map[string]bool{}
		sawScene   bool
		current    *configurator.SceneRecord
		sceneDepth int
		imageDepth int
		depth      int
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read tour xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			t = t.Copy()
			switch {
			case t.Name.Local == "scene":
				sawScene = true
				name := attrValue(t.Attr, "name")
				rec, ok := byID[name]
				if !ok {
					if name != "" && !seen[name] {
						report.MissingInCatalog = append(report.MissingInCatalog, name)
					}
					seen[name] = true
					break
				}
				if !seen[name] {
					report.Matched = append(report.Matched, name)
				}
				seen[name] = true
				current = &rec
				sceneDepth = depth
				if rec.Title != "" && !(opts.KeepTitles && attrValue(t.Attr, "title") != "") {
					t.Attr = setAttr(t.Attr, "title", rec.Title)
				}
			case current != nil && t.Name.Local == "image" && imageDepth == 0:
				imageDepth = depth
			}
			if imageDepth > 0 && opts.ImagePrefix != "" {
				for i, a := range t.Attr {
					if a.Name.Local != "url" || a.Value == "" {
						continue
					}
					t.Attr[i].Value = withPrefix(opts.ImagePrefix, a.Value)
					report.ImagesRewritten++
				}
			}
			tok = t
		case xml.EndElement:
			if depth == imageDepth {
				imageDepth = 0
			}
			if depth == sceneDepth {
				current = nil
				sceneDepth = 0
			}
			depth--
		}

		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return report, fmt.Errorf("write tour xml: %w", err)
		}
	}
	if err := enc.Flush(); err != nil {
		return report, fmt.Errorf("write tour xml: %w", err)
	}
	if !sawScene {
		return report, ErrNotTourXML
	}

	for _, rec := range scenes.Records {
		if !seen[rec.SceneID] {
			report.MissingInTour = append(report.MissingInTour, rec.SceneID)
		}
	}
	return report, nil
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func setAttr(attrs []xml.Attr, name, value string) []xml.Attr {
	for i, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			attrs[i].Value = value
			return attrs
		}
	}
	return append(attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// withPrefix drops any scheme and host from raw and hangs its path off prefix.
// krpano placeholders such as %s survive untouched.
func withPrefix(prefix, raw string) string {
	p := raw
	if i := strings.Index(p, "://"); i >= 0 {
		p = p[i+3:]
		if j := strings.IndexByte(p, '/'); j >= 0 {
			p = p[j:]
		} else {
			p = ""
		}
	}
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimLeft(p, "/")
	return strings.TrimRight(prefix, "/") + "/" + p
}
