package configurator

// TourScene is what the panorama viewer needs to show one scene.
type TourScene struct {
	SceneID      string                           `json:"sceneId"`
	Title        string                           `json:"title"`
	PanoramaURL  string                           `json:"panoramaUrl,omitempty"`
	ThumbnailURL string                           `json:"thumbnailUrl,omitempty"`
	Fixtures     map[FixtureType]FixtureSelection `json:"fixtures"`
	Hotspots     []Hotspot                        `json:"hotspots"`
}

type Tour struct {
	Scenes         []TourScene `json:"scenes"`
	CurrentSceneID string      `json:"currentSceneId,omitempty"`
}

// BuildTour lays out the viewer description. assetURL maps an object key to
// a URL the browser can load; empty keys stay empty.
func BuildTour(snap *Snapshot, assetURL func(key string) string, currentSceneID string) Tour {
	tour := Tour{Scenes: make([]TourScene, 0, len(snap.Scenes.Records))}
	for _, r := range snap.Scenes.Records {
		ts := TourScene{
			SceneID:  r.SceneID,
			Title:    r.Title,
			Fixtures: r.Fixtures,
			Hotspots: []Hotspot{},
		}
		if r.Panorama != "" {
			ts.PanoramaURL = assetURL(r.Panorama)
		}
		if r.Thumbnail != "" {
			ts.ThumbnailURL = assetURL(r.Thumbnail)
		}
		for _, h := range snap.Product.Hotspots {
			if h.SceneID == "" || h.SceneID == r.SceneID {
				ts.Hotspots = append(ts.Hotspots, h)
			}
		}
		tour.Scenes = append(tour.Scenes, ts)
	}
	if _, ok := snap.Scenes.Find(currentSceneID); ok {
		tour.CurrentSceneID = currentSceneID
	}
	return tour
}
