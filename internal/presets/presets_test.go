package presets

import "testing"

func TestGet(t *testing.T) {
	tests := []struct {
		name      string
		wantFound bool
		wantWidth int
		wantFill  bool
	}{
		{name: "thumbnail", wantFound: true, wantWidth: 300, wantFill: true},
		{name: "md", wantFound: true, wantWidth: 1024},
		{name: "og", wantFound: true, wantWidth: 1200, wantFill: true},
		{name: "email", wantFound: true, wantWidth: 800},
		{name: "poster", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Get(tt.name)
			if ok != tt.wantFound {
				t.Fatalf("Get(%q) found = %v, want %v", tt.name, ok, tt.wantFound)
			}
			if !ok {
				return
			}
			if p.Width != tt.wantWidth || p.Fill != tt.wantFill {
				t.Errorf("Get(%q) = %+v", tt.name, p)
			}
		})
	}
}

func TestPresetKinds(t *testing.T) {
	if !IsSocialPreset("twitter") || IsSocialPreset("md") {
		t.Error("IsSocialPreset misclassified")
	}
	if !IsResponsivePreset("xl") || IsResponsivePreset("og") {
		t.Error("IsResponsivePreset misclassified")
	}
}

func TestNames_SortedAndComplete(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("Names() has %d entries, want %d", len(names), len(All))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Names() not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
}

func TestFillPresetsHaveBothDimensions(t *testing.T) {
	for name, p := range All {
		if p.Fill && (p.Width == 0 || p.Height == 0) {
			t.Errorf("%s: fill preset needs width and height, got %dx%d", name, p.Width, p.Height)
		}
	}
}
