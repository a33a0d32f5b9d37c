package uidraw

import "testing"

func TestTextureIDIsNull(t *testing.T) {
	if !NullTexture.IsNull() {
		t.Error("NullTexture.IsNull() = false")
	}
	if TextureID(1).IsNull() {
		t.Error("TextureID(1).IsNull() = true")
	}
}

func TestFormatBytesPerPixel(t *testing.T) {
	tests := []struct {
		format Format
		want   int
	}{
		{FormatRGBA8, 4},
		{FormatAlpha8, 1},
	}
	for _, tt := range tests {
		if got := tt.format.BytesPerPixel(); got != tt.want {
			t.Errorf("%v.BytesPerPixel() = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestNewTextureData(t *testing.T) {
	td := NewTextureData(FormatRGBA8, 64, 32)
	if td.Status() != StatusWantCreate {
		t.Errorf("new texture status = %v, want %v", td.Status(), StatusWantCreate)
	}
	if !td.ID().IsNull() {
		t.Errorf("new texture id = %d, want null", td.ID())
	}
	if td.Width() != 64 || td.Height() != 32 {
		t.Errorf("size = %dx%d, want 64x32", td.Width(), td.Height())
	}
	if len(td.Pixels()) != 64*32*4 {
		t.Errorf("pixel buffer = %d bytes, want %d", len(td.Pixels()), 64*32*4)
	}
}

func TestSetStatusDestroyedClearsID(t *testing.T) {
	td := NewTextureData(FormatRGBA8, 4, 4)
	td.SetID(7)
	td.SetWantDestroyNextFrame(true)
	td.SetStatus(StatusDestroyed)
	if !td.ID().IsNull() {
		t.Errorf("id after destroy = %d, want null", td.ID())
	}
	if td.Status() != StatusDestroyed {
		t.Errorf("status = %v, want %v", td.Status(), StatusDestroyed)
	}
}

// A destroyed notification the host never asked for means the backend tore
// the resource down on its own; the record must ask for recreation.
func TestSetStatusDestroyedUnrequestedFlipsToWantCreate(t *testing.T) {
	td := NewTextureData(FormatRGBA8, 4, 4)
	td.SetID(7)
	td.SetStatus(StatusOK)

	td.SetStatus(StatusDestroyed)
	if td.Status() != StatusWantCreate {
		t.Errorf("status = %v, want %v", td.Status(), StatusWantCreate)
	}
	if !td.ID().IsNull() {
		t.Errorf("id = %d, want null", td.ID())
	}
}

func TestRequestDestroy(t *testing.T) {
	td := NewTextureData(FormatRGBA8, 4, 4)
	td.SetID(3)
	td.SetStatus(StatusOK)
	td.RequestDestroy()
	if td.Status() != StatusWantDestroy {
		t.Errorf("status = %v, want %v", td.Status(), StatusWantDestroy)
	}
	if !td.WantDestroyNextFrame() {
		t.Error("WantDestroyNextFrame = false after RequestDestroy")
	}
	// Now the destroyed acknowledgement must stick.
	td.SetStatus(StatusDestroyed)
	if td.Status() != StatusDestroyed {
		t.Errorf("status after ack = %v, want %v", td.Status(), StatusDestroyed)
	}
}

func TestSetPixels(t *testing.T) {
	td := NewTextureData(FormatAlpha8, 2, 2)
	if !td.SetPixels([]byte{1, 2, 3, 4}) {
		t.Fatal("SetPixels rejected correctly sized buffer")
	}
	if td.SetPixels([]byte{1, 2, 3}) {
		t.Error("SetPixels accepted short buffer")
	}
}

func TestRectPixelsRGBA(t *testing.T) {
	// 2x2 RGBA texture with distinct pixels.
	td := NewTextureData(FormatRGBA8, 2, 2)
	td.SetPixels([]byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	})

	got, ok := td.RectPixelsRGBA(Rect{X: 1, Y: 1, W: 1, H: 1})
	if !ok {
		t.Fatal("RectPixelsRGBA reported failure for valid rect")
	}
	want := []byte{13, 14, 15, 16}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixels = %v, want %v", got, want)
		}
	}
}

func TestRectPixelsRGBAExpandsAlpha(t *testing.T) {
	td := NewTextureData(FormatAlpha8, 2, 1)
	td.SetPixels([]byte{0x00, 0x80})

	got, ok := td.RectPixelsRGBA(td.FullRect())
	if !ok {
		t.Fatal("RectPixelsRGBA reported failure")
	}
	want := []byte{0xff, 0xff, 0xff, 0x00, 0xff, 0xff, 0xff, 0x80}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixels = %v, want %v", got, want)
		}
	}
}

func TestRectPixelsRGBAOutOfBounds(t *testing.T) {
	td := NewTextureData(FormatRGBA8, 4, 4)
	tests := []Rect{
		{X: 4, Y: 0, W: 1, H: 1},
		{X: 0, Y: 0, W: 5, H: 1},
		{X: -1, Y: 0, W: 1, H: 1},
		{X: 0, Y: 0, W: 0, H: 4},
	}
	for _, r := range tests {
		if _, ok := td.RectPixelsRGBA(r); ok {
			t.Errorf("RectPixelsRGBA(%+v) ok = true, want false", r)
		}
	}
}

func TestAddUpdateRect(t *testing.T) {
	td := NewTextureData(FormatRGBA8, 8, 8)
	td.AddUpdateRect(Rect{X: 0, Y: 0, W: 2, H: 2})
	td.AddUpdateRect(Rect{X: 4, Y: 4, W: 2, H: 2})
	td.AddUpdateRect(Rect{}) // empty, dropped
	if n := len(td.Updates()); n != 2 {
		t.Fatalf("updates = %d, want 2", n)
	}
	td.ClearUpdates()
	if n := len(td.Updates()); n != 0 {
		t.Errorf("updates after clear = %d, want 0", n)
	}
}

func TestUpdateResultApplyTo(t *testing.T) {
	tests := []struct {
		name       string
		result     UpdateResult
		wantStatus TextureStatus
		wantID     TextureID
	}{
		{"created", UpdateResult{Kind: UpdateCreated, ID: 9}, StatusOK, 9},
		{"updated", UpdateResult{Kind: UpdateUpdated}, StatusOK, 0},
		{"no action", UpdateResult{Kind: UpdateNoAction}, StatusWantCreate, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := NewTextureData(FormatRGBA8, 1, 1)
			tt.result.ApplyTo(td)
			if td.Status() != tt.wantStatus {
				t.Errorf("status = %v, want %v", td.Status(), tt.wantStatus)
			}
			if td.ID() != tt.wantID {
				t.Errorf("id = %d, want %d", td.ID(), tt.wantID)
			}
		})
	}
}

func TestUpdateResultApplyToDestroyed(t *testing.T) {
	td := NewTextureData(FormatRGBA8, 1, 1)
	td.SetID(4)
	td.SetStatus(StatusOK)
	td.RequestDestroy()

	UpdateResult{Kind: UpdateDestroyed}.ApplyTo(td)
	if td.Status() != StatusDestroyed {
		t.Errorf("status = %v, want %v", td.Status(), StatusDestroyed)
	}
	if !td.ID().IsNull() {
		t.Errorf("id = %d, want null", td.ID())
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status TextureStatus
		want   string
	}{
		{StatusOK, "ok"},
		{StatusWantCreate, "want-create"},
		{StatusWantUpdates, "want-updates"},
		{StatusWantDestroy, "want-destroy"},
		{StatusDestroyed, "destroyed"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
