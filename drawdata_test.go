package uidraw

import "testing"

func TestDrawDataCounts(t *testing.T) {
	dd := &DrawData{
		Lists: []*DrawList{
			{Vertices: make([]DrawVert, 4), Indices: make([]uint16, 6)},
			{Vertices: make([]DrawVert, 3), Indices: make([]uint16, 3)},
		},
	}
	if got := dd.TotalVertexCount(); got != 7 {
		t.Errorf("TotalVertexCount = %d, want 7", got)
	}
	if got := dd.TotalIndexCount(); got != 9 {
		t.Errorf("TotalIndexCount = %d, want 9", got)
	}
}

func TestFramebufferSize(t *testing.T) {
	tests := []struct {
		name  string
		size  [2]float32
		scale [2]float32
		wantW uint32
		wantH uint32
	}{
		{"unit scale", [2]float32{800, 600}, [2]float32{1, 1}, 800, 600},
		{"hidpi", [2]float32{800, 600}, [2]float32{2, 2}, 1600, 1200},
		{"zero scale defaults to one", [2]float32{640, 480}, [2]float32{0, 0}, 640, 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dd := &DrawData{DisplaySize: tt.size, FramebufferScale: tt.scale}
			w, h := dd.FramebufferSize()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FramebufferSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
