// Command uidraw-demo drives the frame renderer against the software
// device: it creates a small glyph-atlas style texture, renders a few
// frames with dirty-rect updates, then retires the texture, logging the
// renderer's texture traffic along the way.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
	"github.com/gogpu/uidraw/render"
)

func main() {
	var (
		name   = flag.String("backend", backend.NameSoftware, "backend device to use")
		frames = flag.Int("frames", 8, "number of frames to render")
		size   = flag.Int("size", 64, "atlas texture size in pixels")
	)
	flag.Parse()

	uidraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	dev, err := backend.Get(*name)
	if err != nil {
		log.Fatalf("backend %q: %v", *name, err)
	}
	defer dev.Close()

	r, err := render.New(dev)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}
	defer r.Close()

	atlas := makeAtlas(*size)

	for frame := 0; frame < *frames; frame++ {
		switch {
		case frame == *frames/2:
			// Touch a corner of the atlas mid-run.
			copy(atlas.Pixels(), make([]byte, *size/2))
			atlas.AddUpdateRect(uidraw.Rect{W: *size / 2, H: 1})
			atlas.SetStatus(uidraw.StatusWantUpdates)
		case frame == *frames-1:
			atlas.RequestDestroy()
			atlas.SetUnusedFrames(1)
		}

		if err := r.Render(frameData(atlas)); err != nil {
			log.Fatalf("frame %d: %v", frame, err)
		}
		log.Printf("frame %d: texture %d status %s", frame, atlas.ID(), atlas.Status())
	}

	log.Printf("done: %d textures registered, %d draws skipped",
		r.Registry().Len(), r.SkippedDraws())
}

// makeAtlas builds an alpha-only texture with a simple gradient, the shape
// a font atlas takes before glyphs are packed.
func makeAtlas(size int) *uidraw.TextureData {
	td := uidraw.NewTextureData(uidraw.FormatAlpha8, size, size)
	pix := td.Pixels()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			pix[y*size+x] = byte((x + y) * 255 / (2 * size))
		}
	}
	return td
}

// frameData wraps the atlas and a textured quad into one frame's output.
func frameData(atlas *uidraw.TextureData) *uidraw.DrawData {
	list := &uidraw.DrawList{
		Vertices: []uidraw.DrawVert{
			{Pos: [2]float32{32, 32}, UV: [2]float32{0, 0}, Color: 0xffffffff},
			{Pos: [2]float32{96, 32}, UV: [2]float32{1, 0}, Color: 0xffffffff},
			{Pos: [2]float32{96, 96}, UV: [2]float32{1, 1}, Color: 0xffffffff},
			{Pos: [2]float32{32, 96}, UV: [2]float32{0, 1}, Color: 0xffffffff},
		},
		Indices: []uint16{0, 1, 2, 0, 2, 3},
		Cmds: []uidraw.DrawCmd{{
			Texture:   atlas.ID(),
			ClipRect:  [4]float32{0, 0, 640, 480},
			ElemCount: 6,
		}},
	}
	return &uidraw.DrawData{
		Lists:            []*uidraw.DrawList{list},
		Textures:         []*uidraw.TextureData{atlas},
		DisplaySize:      [2]float32{640, 480},
		FramebufferScale: [2]float32{1, 1},
	}
}
