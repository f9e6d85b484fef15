package core

// SoundID identifies a game sound effect
type SoundID int

const (
	SoundBounce         SoundID = iota // Ball off paddle or wall
	SoundBounceCharge                  // Ball off a charged paddle
	SoundImpulse                       // Paddle impulse fired
	SoundImpulseExhaust                // Impulse charge spent
	SoundBreak1                        // Block break, first variant
	SoundBreak2
	SoundBreak3
	SoundBreak4
	SoundWin // Level cleared
	SoundIDCount
)

// Registration names, as passed to the player
var soundNames = [SoundIDCount]string{
	SoundBounce:         "bounce",
	SoundBounceCharge:   "bounce_charge",
	SoundImpulse:        "impulse",
	SoundImpulseExhaust: "impulse_exhaust",
	SoundBreak1:         "break1",
	SoundBreak2:         "break2",
	SoundBreak3:         "break3",
	SoundBreak4:         "break4",
	SoundWin:            "win",
}

// Asset file names under the sounds directory
var soundFiles = [SoundIDCount]string{
	SoundBounce:         "bounce.wav",
	SoundBounceCharge:   "bounce-charge.wav",
	SoundImpulse:        "impulse.wav",
	SoundImpulseExhaust: "impulse-exhaust.wav",
	SoundBreak1:         "break1.wav",
	SoundBreak2:         "break2.wav",
	SoundBreak3:         "break3.wav",
	SoundBreak4:         "break4.wav",
	SoundWin:            "win.wav",
}

// SoundsDir is the default asset directory, relative to the base locator
const SoundsDir = "sounds"

// Valid reports whether id is a known sound
func (id SoundID) Valid() bool {
	return id >= 0 && id < SoundIDCount
}

// Name returns the registration name, empty for unknown ids
func (id SoundID) Name() string {
	if !id.Valid() {
		return ""
	}
	return soundNames[id]
}

func (id SoundID) String() string {
	if !id.Valid() {
		return "unknown"
	}
	return soundNames[id]
}

// File returns the asset file name
func (id SoundID) File() string {
	if !id.Valid() {
		return ""
	}
	return soundFiles[id]
}

// Path returns the default relative locator, e.g. sounds/bounce.wav
func (id SoundID) Path() string {
	if !id.Valid() {
		return ""
	}
	return SoundsDir + "/" + soundFiles[id]
}

// Sounds returns every sound id in declaration order
func Sounds() []SoundID {
	ids := make([]SoundID, 0, SoundIDCount)
	for id := SoundID(0); id < SoundIDCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ParseSound maps a registration name back to its id
func ParseSound(name string) (SoundID, bool) {
	for id, n := range soundNames {
		if n == name {
			return SoundID(id), true
		}
	}
	return 0, false
}
