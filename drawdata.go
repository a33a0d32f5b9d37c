package uidraw

// DrawVert is one display-list vertex: screen position, texture coordinate,
// and a packed RGBA color, matching the layout immediate-mode GUI libraries
// emit.
type DrawVert struct {
	Pos   [2]float32
	UV    [2]float32
	Color uint32
}

// DrawCmd is one draw call within a DrawList: a run of indices rendered with
// a single texture and scissor rect.
type DrawCmd struct {
	// Texture identifies the texture to sample. NullTexture selects the
	// renderer's fallback texture.
	Texture TextureID

	// ClipRect is the scissor rectangle in display coordinates
	// (min x, min y, max x, max y).
	ClipRect [4]float32

	// IndexOffset is the first index of this command within the list's
	// index buffer.
	IndexOffset uint32

	// ElemCount is the number of indices to draw.
	ElemCount uint32

	// VertexOffset is added to each index when addressing the vertex buffer.
	VertexOffset uint32
}

// DrawList is one contiguous vertex/index buffer pair with the commands that
// address it.
type DrawList struct {
	Vertices []DrawVert
	Indices  []uint16
	Cmds     []DrawCmd
}

// DrawData is the complete output of one GUI frame: the display list to
// render plus the texture requests the renderer must apply before drawing.
type DrawData struct {
	// Lists are drawn in order.
	Lists []*DrawList

	// Textures are the frame's texture records. The renderer applies their
	// pending status requests during the Uploading phase and reports
	// results back through each record's status.
	Textures []*TextureData

	// DisplaySize is the target surface size in display coordinates.
	DisplaySize [2]float32

	// FramebufferScale converts display coordinates to framebuffer pixels
	// (>1 on high-DPI surfaces).
	FramebufferScale [2]float32
}

// TotalIndexCount returns the number of indices across all lists.
func (dd *DrawData) TotalIndexCount() int {
	n := 0
	for _, l := range dd.Lists {
		n += len(l.Indices)
	}
	return n
}

// TotalVertexCount returns the number of vertices across all lists.
func (dd *DrawData) TotalVertexCount() int {
	n := 0
	for _, l := range dd.Lists {
		n += len(l.Vertices)
	}
	return n
}

// FramebufferSize returns the target size in framebuffer pixels, applying
// the framebuffer scale. A zero scale is treated as 1.
func (dd *DrawData) FramebufferSize() (w, h uint32) {
	sx, sy := dd.FramebufferScale[0], dd.FramebufferScale[1]
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return uint32(dd.DisplaySize[0] * sx), uint32(dd.DisplaySize[1] * sy)
}
