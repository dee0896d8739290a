// Package vehicle implements arcade vehicle physics: per-tick integration of
// controls into motion, lap bookkeeping against a track, and the simple
// push-apart collision response between cars.
package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/tuikart/pkg/input"
	"github.com/taigrr/tuikart/pkg/math3d"
	"github.com/taigrr/tuikart/pkg/track"
)

// ErrInvalidParameter is wrapped by construction errors.
var ErrInvalidParameter = errors.New("invalid vehicle parameter")

// Physics constants.
const (
	Gravity = 20.0 // units/s²

	// MaxDT bounds a single step; longer frames are truncated.
	MaxDT = 0.1

	airborneGap   = 0.1
	steerMinSpeed = 1.0
	offTrackDrag  = 0.95
	trackDrag     = 0.99
	minLapTime    = 1.0
	rollFactor    = 0.1
)

// Vehicle is one racer's physical and race state.
type Vehicle struct {
	ID    int
	Name  string
	Class Class

	Position     math3d.Vec3
	Velocity     math3d.Vec3
	Acceleration math3d.Vec3
	Yaw          float64
	Pitch        float64
	Roll         float64
	Speed        float64 // horizontal

	// Controls, consumed by the next Update.
	Steering float64
	Throttle float64
	Brake    float64

	MaxSpeed         float64
	AccelerationRate float64
	BrakeRate        float64
	SteeringRate     float64
	Grip             float64
	Drag             float64

	CurrentLap        int // completed laps
	TotalLaps         int
	CurrentCheckpoint int
	LapTime           float64
	BestLapTime       float64 // 0 until a lap completes
	TotalTime         float64
	TrackProgress     float64 // [0, 1)
	Segment           int     // track segment under the car, -1 until placed
	Finished          bool
	Place             int

	OnTrack  bool
	Airborne bool
}

// New places a vehicle of class c at pos facing dir.
func New(name string, c Class, pos, dir math3d.Vec3, laps int) (*Vehicle, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("class %q: %w", c.Name, err)
	}
	if laps < 1 {
		return nil, fmt.Errorf("%w: laps must be at least 1, got %d", ErrInvalidParameter, laps)
	}
	v := &Vehicle{
		Name:             name,
		Class:            c,
		Position:         pos,
		Yaw:              dir.Yaw(),
		MaxSpeed:         c.MaxSpeed,
		AccelerationRate: c.AccelerationRate,
		BrakeRate:        c.BrakeRate,
		SteeringRate:     c.SteeringRate,
		Grip:             c.Grip,
		Drag:             c.Drag,
		TotalLaps:        laps,
		Segment:          -1,
		OnTrack:          true,
	}
	return v, nil
}

// SetControls copies a clamped input onto the vehicle.
func (v *Vehicle) SetControls(in input.Input) {
	in = in.Clamp()
	v.Steering = in.Steering
	v.Throttle = in.Throttle
	v.Brake = in.Brake
}

// Forward returns the unit heading.
func (v *Vehicle) Forward() math3d.Vec3 {
	return math3d.YawDir(v.Yaw)
}

// Transform returns the model matrix for rendering.
func (v *Vehicle) Transform() math3d.Mat4 {
	return math3d.Model(v.Position, v.Yaw, v.Pitch, v.Roll)
}

// Update advances the vehicle by dt seconds on t. dt is clamped to
// [0, MaxDT].
func (v *Vehicle) Update(t *track.Track, dt float64) {
	dt = math3d.Clamp(dt, 0, MaxDT)
	if math.IsNaN(dt) {
		dt = 0
	}
	before := v.Velocity

	v.Segment = t.NearestSegment(v.Position, v.Segment)
	onTrack, ground := t.SurfaceAt(v.Position, v.Segment)
	v.OnTrack = onTrack

	if v.Position.Y-ground > airborneGap {
		v.Velocity.Y -= Gravity * dt
		v.Airborne = true
	} else {
		v.Position.Y = ground
		v.Velocity.Y = 0
		v.Airborne = false
	}

	speed := v.Velocity.HorizontalLen()

	if speed > steerMinSpeed && !v.Airborne {
		attenuation := max(1-0.5*speed/v.MaxSpeed, 0.5)
		v.Yaw = math3d.WrapAngle(v.Yaw + v.Steering*v.SteeringRate*dt*attenuation)

		dir := v.Velocity.Flat().Normalize()
		dir = dir.Lerp(v.Forward(), v.Grip).NormalizeOr(v.Forward())
		v.setHorizontal(dir.Scale(speed))
	}

	if !v.Airborne {
		if speed < v.MaxSpeed {
			accel := v.AccelerationRate * v.Throttle
			if !v.OnTrack {
				accel *= 0.5
			}
			v.setHorizontal(v.Velocity.Flat().Add(v.Forward().Scale(accel * dt)))
		}
		if h := v.Velocity.HorizontalLen(); h > v.MaxSpeed {
			v.setHorizontal(v.Velocity.Flat().Scale(v.MaxSpeed / h))
		}

		if v.Brake > 0 {
			h := v.Velocity.HorizontalLen()
			reduced := max(h-v.BrakeRate*v.Brake*dt, 0)
			if h > 0 {
				v.setHorizontal(v.Velocity.Flat().Scale(reduced / h))
			}
		}
	}

	drag := v.Drag
	if !v.OnTrack {
		drag = offTrackDrag
	}
	v.Velocity = v.Velocity.Scale(drag)

	v.Position = v.Position.Add(v.Velocity.Scale(dt))
	v.Speed = v.Velocity.HorizontalLen()
	if dt > 0 {
		v.Acceleration = v.Velocity.Sub(before).Scale(1 / dt)
	}

	v.Segment = t.NearestSegment(v.Position, v.Segment)
	seg := v.Segment
	if !v.Finished {
		v.updateLap(t)
		v.LapTime += dt
		v.TotalTime += dt
		v.TrackProgress = t.Progress(v.Position, seg)
		if v.CurrentLap >= v.TotalLaps {
			v.Finished = true
		}
	}

	if !v.Airborne && seg >= 0 && seg < len(t.Segments) {
		s := t.Segments[seg]
		v.Pitch = -math.Atan2(s.End.Y-s.Start.Y, s.Length)
	}
	v.Roll = -v.Steering * rollFactor
}

func (v *Vehicle) setHorizontal(h math3d.Vec3) {
	v.Velocity.X = h.X
	v.Velocity.Z = h.Z
}

// updateLap advances the checkpoint index and counts a lap when it wraps.
func (v *Vehicle) updateLap(t *track.Track) {
	prev := v.CurrentCheckpoint
	next := t.CheckCheckpoint(v.Position, prev)
	if next == prev {
		return
	}
	v.CurrentCheckpoint = next
	if next != 0 {
		return
	}
	v.CurrentLap++
	if v.LapTime > minLapTime && (v.BestLapTime == 0 || v.LapTime < v.BestLapTime) {
		v.BestLapTime = v.LapTime
	}
	v.LapTime = 0
}

// Distance returns how far around the current lap the vehicle is.
func (v *Vehicle) Distance(t *track.Track) float64 {
	return v.TrackProgress * t.TotalLength
}

// Respawn puts the vehicle back on the centerline at its current progress,
// stopped and facing along the track.
func (v *Vehicle) Respawn(t *track.Track) {
	distance := v.TrackProgress * t.TotalLength
	pos, dir := t.PositionAt(distance)
	v.Position = pos
	v.Segment = t.SegmentAt(distance)
	v.Velocity = math3d.Zero3()
	v.Acceleration = math3d.Zero3()
	v.Speed = 0
	v.Yaw = dir.Yaw()
	v.Pitch, v.Roll = 0, 0
	v.OnTrack, v.Airborne = true, false
}
