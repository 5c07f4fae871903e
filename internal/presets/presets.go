package presets

import "sort"

// Preset is a named resize request. Fill presets center-crop to the target
// aspect ratio before resizing; the others keep the source aspect.
type Preset struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Quality    int    `json:"quality"`
	Fill       bool   `json:"fill"`
	TargetSize string `json:"targetSize,omitempty"`
}

var Thumbnail = Preset{Width: 300, Height: 300, Quality: 85, Fill: true}

var Responsive = map[string]Preset{
	"sm": {Width: 640, Quality: 85},
	"md": {Width: 1024, Quality: 85},
	"lg": {Width: 1920, Quality: 85},
	"xl": {Width: 2560, Quality: 85},
}

var Social = map[string]Preset{
	"og":                 {Width: 1200, Height: 630, Quality: 90, Fill: true},
	"twitter":            {Width: 1200, Height: 675, Quality: 90, Fill: true},
	"instagram_square":   {Width: 1080, Height: 1080, Quality: 90, Fill: true},
	"instagram_portrait": {Width: 1080, Height: 1350, Quality: 90, Fill: true},
	"instagram_story":    {Width: 1080, Height: 1920, Quality: 90, Fill: true},
}

// Budget presets trade quality for a size target.
var Budget = map[string]Preset{
	"email": {Width: 800, Quality: 85, TargetSize: "150KB"},
	"web":   {Width: 1600, Quality: 85, TargetSize: "300KB"},
}

var All = map[string]Preset{
	"thumbnail":          Thumbnail,
	"sm":                 Responsive["sm"],
	"md":                 Responsive["md"],
	"lg":                 Responsive["lg"],
	"xl":                 Responsive["xl"],
	"og":                 Social["og"],
	"twitter":            Social["twitter"],
	"instagram_square":   Social["instagram_square"],
	"instagram_portrait": Social["instagram_portrait"],
	"instagram_story":    Social["instagram_story"],
	"email":              Budget["email"],
	"web":                Budget["web"],
}

func Get(name string) (Preset, bool) {
	p, ok := All[name]
	return p, ok
}

func IsSocialPreset(name string) bool {
	_, ok := Social[name]
	return ok
}

func IsResponsivePreset(name string) bool {
	_, ok := Responsive[name]
	return ok
}

// Names returns every preset name in sorted order.
func Names() []string {
	names := make([]string, 0, len(All))
	for n := range All {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
