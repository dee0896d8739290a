package input

import (
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
)

// control is a held key action.
type control int

const (
	left control = iota
	right
	accelerate
	brake
	numControls
)

// DefaultHold is how long a key counts as held after its last press or
// repeat when the terminal does not report releases.
const DefaultHold = 180 * time.Millisecond

// steerRate is how fast keyboard steering ramps, in full locks per second.
const steerRate = 4.0

// Keyboard turns terminal key events into analog-ish controls. Events are
// fed from the terminal's event goroutine through HandleEvent; Poll runs on
// the game loop.
type Keyboard struct {
	mu       sync.Mutex
	lastSeen [numControls]time.Time
	down     [numControls]bool
	releases bool // terminal reports key releases
	buttons  Buttons
	steer    float64
	lastPoll time.Time

	Hold time.Duration
	now  func() time.Time
}

// NewKeyboard creates a keyboard source.
func NewKeyboard() *Keyboard {
	return &Keyboard{Hold: DefaultHold, now: time.Now}
}

func keyControl(k uv.Key) (control, bool) {
	switch {
	case k.MatchString("left", "a", "h"):
		return left, true
	case k.MatchString("right", "d", "l"):
		return right, true
	case k.MatchString("up", "w", "k"):
		return accelerate, true
	case k.MatchString("down", "s", "j", "space"):
		return brake, true
	}
	return 0, false
}

func keyButton(k uv.Key) (Buttons, bool) {
	switch {
	case k.MatchString("p"):
		return ButtonPause, true
	case k.MatchString("r"):
		return ButtonReset, true
	case k.MatchString("c"):
		return ButtonCamera, true
	}
	return 0, false
}

// HandleEvent records a key event. It returns true if the event was a
// driving key.
func (kb *Keyboard) HandleEvent(ev uv.Event) bool {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		k := ev.Key()
		if c, ok := keyControl(k); ok {
			kb.down[c] = true
			kb.lastSeen[c] = kb.now()
			return true
		}
		if b, ok := keyButton(k); ok && !k.IsRepeat {
			kb.buttons |= b
			return true
		}
	case uv.KeyReleaseEvent:
		if c, ok := keyControl(ev.Key()); ok {
			kb.releases = true
			kb.down[c] = false
			return true
		}
	}
	return false
}

func (kb *Keyboard) held(c control, now time.Time) bool {
	if !kb.down[c] {
		return false
	}
	if kb.releases {
		return true
	}
	return now.Sub(kb.lastSeen[c]) <= kb.Hold
}

// Poll implements Source. Buttons are reported once per press.
func (kb *Keyboard) Poll() Input {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	now := kb.now()
	dt := 0.0
	if !kb.lastPoll.IsZero() {
		dt = now.Sub(kb.lastPoll).Seconds()
	}
	kb.lastPoll = now

	target := 0.0
	if kb.held(left, now) {
		target--
	}
	if kb.held(right, now) {
		target++
	}
	step := steerRate * dt
	switch {
	case kb.steer < target:
		kb.steer = min(kb.steer+step, target)
	case kb.steer > target:
		kb.steer = max(kb.steer-step, target)
	}

	in := Input{Steering: kb.steer, Buttons: kb.buttons}
	if kb.held(accelerate, now) {
		in.Throttle = 1
	}
	if kb.held(brake, now) {
		in.Brake = 1
	}
	kb.buttons = 0
	return in.Clamp()
}
