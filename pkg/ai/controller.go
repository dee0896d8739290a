// Package ai drives computer-controlled vehicles. A Controller looks ahead
// along the track, steers toward a target point, nudges away from nearby
// cars and recovers when it leaves the road. It only ever writes its own
// vehicle's controls.
package ai

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/tuikart/pkg/math3d"
	"github.com/taigrr/tuikart/pkg/rng"
	"github.com/taigrr/tuikart/pkg/track"
	"github.com/taigrr/tuikart/pkg/vehicle"
)

// ErrInvalidParameter is wrapped by construction errors.
var ErrInvalidParameter = errors.New("invalid ai parameter")

// State is the controller's current behavior.
type State int

const (
	Racing State = iota
	Overtaking
	// Defending is reserved; no rule enters it yet.
	Defending
	Recovering
)

func (s State) String() string {
	switch s {
	case Racing:
		return "racing"
	case Overtaking:
		return "overtaking"
	case Defending:
		return "defending"
	case Recovering:
		return "recovering"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Tuning constants.
const (
	StateDuration = 2.0 // seconds before a non-racing state reverts

	maxWander      = 0.15
	wanderDecay    = 0.95
	speedLookAhead = 0.5
	steerGain      = 2.0
	recoveryGain   = 3.0

	avoidRadius      = 8.0
	overtakeAhead    = 10.0
	overtakeRadius   = 5.0
	sharpSteer       = 0.5
	verySharpSteer   = 0.7
	brakeSpeed       = 50.0
	brakeAmount      = 0.5
	recoveryThrottle = 0.5
)

// Controller steers one vehicle.
type Controller struct {
	Difficulty Difficulty
	State      State
	StateTimer float64

	Skill       float64
	Aggression  float64
	ErrorRate   float64
	SpeedFactor float64
	LookAhead   float64
	Wander      float64

	vehicle  *vehicle.Vehicle
	rand     rng.Source
	passSide float64 // sign of the lateral direction to pass on
}

// New creates a controller for v. seed drives the controller's private
// wander noise.
func New(v *vehicle.Vehicle, d Difficulty, seed uint64) (*Controller, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil vehicle", ErrInvalidParameter)
	}
	if !d.Valid() {
		return nil, fmt.Errorf("%w: difficulty %d out of range", ErrInvalidParameter, int(d))
	}
	p := d.Profile()
	return &Controller{
		Difficulty:  d,
		State:       Racing,
		Skill:       p.Skill,
		Aggression:  p.Aggression,
		ErrorRate:   p.ErrorRate,
		SpeedFactor: p.SpeedFactor,
		LookAhead:   p.LookAhead,
		vehicle:     v,
		rand:        rng.NewPCG(seed),
	}, nil
}

// Vehicle returns the controlled vehicle.
func (c *Controller) Vehicle() *vehicle.Vehicle {
	return c.vehicle
}

func (c *Controller) setState(s State) {
	c.State = s
	c.StateTimer = 0
}

// Update decides this tick's controls and writes them to the controller's
// vehicle. vehicles may include the controlled vehicle itself.
func (c *Controller) Update(t *track.Track, vehicles []*vehicle.Vehicle, dt float64) {
	v := c.vehicle

	if c.State != Racing {
		c.StateTimer += dt
		if c.StateTimer >= StateDuration {
			c.setState(Racing)
		}
	}

	if rng.Chance(c.rand, c.ErrorRate) {
		c.Wander = rng.Range(c.rand, -maxWander, maxWander)
	} else {
		c.Wander *= wanderDecay
	}

	target, dir := t.PositionAt(v.TrackProgress*t.TotalLength + c.LookAhead + v.Speed*speedLookAhead)
	if c.State == Overtaking && len(t.Segments) > 0 {
		width := t.Segments[t.FindSegment(target)].Width
		target = target.Add(math3d.SideDir(dir.Yaw()).Scale(c.passSide * width / 4))
	}

	toTarget := target.Sub(v.Position)
	bearingErr := math3d.WrapAngle(math.Atan2(toTarget.X, toTarget.Z) - v.Yaw)

	steer := math3d.Clamp(bearingErr*steerGain*c.Skill, -1, 1)
	steer = math3d.Clamp(steer+c.Wander, -1, 1)

	forward := v.Forward()
	side := math3d.SideDir(v.Yaw)
	for _, o := range vehicles {
		if o == v {
			continue
		}
		rel := o.Position.Sub(v.Position)
		d := rel.Len()
		if d >= avoidRadius {
			continue
		}
		offset := rel.Dot(side)
		steer -= math3d.Sign(offset) * c.Aggression * (1 - d/avoidRadius)

		ahead := rel.Dot(forward)
		if ahead > 0 && ahead < overtakeAhead && d < overtakeRadius && c.State == Racing {
			c.setState(Overtaking)
			// Pass on the side away from the blocker.
			c.passSide = -math3d.Sign(offset)
			if c.passSide == 0 {
				c.passSide = 1
			}
		}
	}
	steer = math3d.Clamp(steer, -1, 1)

	throttle := 1.0
	if math.Abs(steer) > sharpSteer {
		throttle = 0.7 - 0.3*math.Abs(steer)
	}
	if v.Speed > v.MaxSpeed*c.SpeedFactor {
		throttle = 0
	}

	brake := 0.0
	if v.Speed > brakeSpeed && math.Abs(steer) > verySharpSteer {
		brake = brakeAmount
		throttle = 0
	}

	if !v.OnTrack {
		if c.State != Recovering {
			c.setState(Recovering)
		}
		steer = math3d.Clamp(bearingErr*recoveryGain, -1, 1)
		throttle = recoveryThrottle
	}

	v.Steering = steer
	v.Throttle = throttle
	v.Brake = brake
}
