package core

import "testing"

func TestSoundCatalogue(t *testing.T) {
	ids := Sounds()
	if len(ids) != int(SoundIDCount) {
		t.Fatalf("Sounds() = %d ids, want %d", len(ids), SoundIDCount)
	}

	seenNames := make(map[string]bool)
	seenFiles := make(map[string]bool)
	for i, id := range ids {
		if id != SoundID(i) {
			t.Errorf("Sounds()[%d] = %d, want declaration order", i, id)
		}
		if !id.Valid() {
			t.Errorf("%d reported invalid", id)
		}
		if id.Name() == "" || id.File() == "" {
			t.Errorf("%d has empty name or file", id)
		}
		if seenNames[id.Name()] {
			t.Errorf("duplicate name %q", id.Name())
		}
		if seenFiles[id.File()] {
			t.Errorf("duplicate file %q", id.File())
		}
		seenNames[id.Name()] = true
		seenFiles[id.File()] = true

		got, ok := ParseSound(id.Name())
		if !ok || got != id {
			t.Errorf("ParseSound(%q) = %d, %v; want %d", id.Name(), got, ok, id)
		}
	}
}

func TestSoundPath(t *testing.T) {
	tests := []struct {
		id   SoundID
		path string
	}{
		{SoundBounce, "sounds/bounce.wav"},
		{SoundBounceCharge, "sounds/bounce-charge.wav"},
		{SoundImpulseExhaust, "sounds/impulse-exhaust.wav"},
		{SoundBreak4, "sounds/break4.wav"},
		{SoundWin, "sounds/win.wav"},
	}
	for _, tt := range tests {
		if got := tt.id.Path(); got != tt.path {
			t.Errorf("%s.Path() = %q, want %q", tt.id, got, tt.path)
		}
	}
}

func TestSoundInvalid(t *testing.T) {
	for _, id := range []SoundID{-1, SoundIDCount, 100} {
		if id.Valid() {
			t.Errorf("%d reported valid", id)
		}
		if id.Name() != "" || id.File() != "" || id.Path() != "" {
			t.Errorf("%d returned non-empty metadata", id)
		}
		if id.String() != "unknown" {
			t.Errorf("%d.String() = %q, want unknown", id, id.String())
		}
	}

	if _, ok := ParseSound("explosion"); ok {
		t.Error("ParseSound accepted an unknown name")
	}
	if _, ok := ParseSound(""); ok {
		t.Error("ParseSound accepted the empty name")
	}
}
