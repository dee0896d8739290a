package input

// Step is a scripted input held for a number of ticks.
type Step struct {
	Ticks int
	Input Input
}

// Script replays a fixed sequence of steps, then repeats the last input
// forever. An empty script yields zero input.
type Script struct {
	steps []Step
	step  int
	tick  int
}

// NewScript creates a scripted source.
func NewScript(steps ...Step) *Script {
	return &Script{steps: steps}
}

// Constant returns a source that always yields in.
func Constant(in Input) *Script {
	return NewScript(Step{Ticks: 1, Input: in})
}

// Poll implements Source.
func (s *Script) Poll() Input {
	if len(s.steps) == 0 {
		return Input{}
	}
	for s.step < len(s.steps)-1 && s.tick >= s.steps[s.step].Ticks {
		s.step++
		s.tick = 0
	}
	s.tick++
	return s.steps[s.step].Input.Clamp()
}

// Done reports whether every step has been played at least once.
func (s *Script) Done() bool {
	if len(s.steps) == 0 {
		return true
	}
	return s.step == len(s.steps)-1 && s.tick >= s.steps[s.step].Ticks
}
