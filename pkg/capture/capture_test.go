package capture

import (
	"strings"
	"testing"
	"time"
)

func TestSVGSize(t *testing.T) {
	tests := []struct {
		svg  string
		w, h float64
	}{
		{`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 20" width="2000" height="440">`, 2000, 440},
		{`<svg height="12.5" width="30">`, 30, 12.5},
		{`<svg viewBox="0 0 1 1">`, 0, 0},
		{`<div width="3">`, 0, 0},
	}
	for _, tt := range tests {
		w, h := svgSize([]byte(tt.svg))
		if w != tt.w || h != tt.h {
			t.Errorf("svgSize(%s) = %v, %v; want %v, %v", tt.svg, w, h, tt.w, tt.h)
		}
	}
}

func TestDocument(t *testing.T) {
	doc := Document([]byte(`<svg width="800" height="600"></svg>`))
	if !strings.Contains(doc, "@page{size:800px 600px;margin:0}") {
		t.Errorf("missing page size: %s", doc)
	}
	if !strings.Contains(doc, `<body><svg width="800" height="600"></svg></body>`) {
		t.Errorf("svg not embedded: %s", doc)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{Width: 640}.withDefaults()
	if o.Width != 640 || o.Height != DefaultHeight || o.Scale != DefaultScale || o.Timeout != 30*time.Second {
		t.Errorf("withDefaults = %+v", o)
	}
}
