package render

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/tuikart/pkg/math3d"
)

// ChaseCamera trails a moving body, smoothing both the eye position and the
// heading it follows with critically damped springs.
type ChaseCamera struct {
	Distance  float64 // behind the body
	Height    float64 // above the body
	LookAhead float64 // aim point ahead of the body

	camera    *Camera
	posSpring harmonica.Spring
	yawSpring harmonica.Spring

	eye, eyeVel math3d.Vec3
	yaw, yawVel float64
	ready       bool
}

// NewChaseCamera drives cam, stepping its springs once per frame at fps.
func NewChaseCamera(cam *Camera, fps int) *ChaseCamera {
	return &ChaseCamera{
		Distance:  7,
		Height:    3,
		LookAhead: 6,
		camera:    cam,
		posSpring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
		yawSpring: harmonica.NewSpring(harmonica.FPS(fps), 5.0, 1.0),
	}
}

// Camera returns the driven camera.
func (c *ChaseCamera) Camera() *Camera {
	return c.camera
}

// Reset jumps straight to the resting position behind pos.
func (c *ChaseCamera) Reset(pos math3d.Vec3, yaw float64) {
	c.yaw, c.yawVel = yaw, 0
	c.eye, c.eyeVel = c.rest(pos), math3d.Zero3()
	c.ready = true
	c.apply(pos)
}

// Follow advances the springs one frame toward the body at pos heading yaw.
func (c *ChaseCamera) Follow(pos math3d.Vec3, yaw float64) {
	if !c.ready {
		c.Reset(pos, yaw)
		return
	}

	// Chase the shortest way round so a wrap at ±π does not spin the view.
	target := c.yaw + math3d.WrapAngle(yaw-c.yaw)
	c.yaw, c.yawVel = c.yawSpring.Update(c.yaw, c.yawVel, target)
	c.yaw = math3d.WrapAngle(c.yaw)

	rest := c.rest(pos)
	c.eye.X, c.eyeVel.X = c.posSpring.Update(c.eye.X, c.eyeVel.X, rest.X)
	c.eye.Y, c.eyeVel.Y = c.posSpring.Update(c.eye.Y, c.eyeVel.Y, rest.Y)
	c.eye.Z, c.eyeVel.Z = c.posSpring.Update(c.eye.Z, c.eyeVel.Z, rest.Z)
	c.apply(pos)
}

func (c *ChaseCamera) rest(pos math3d.Vec3) math3d.Vec3 {
	return pos.
		Sub(math3d.YawDir(c.yaw).Scale(c.Distance)).
		Add(math3d.V3(0, c.Height, 0))
}

func (c *ChaseCamera) apply(pos math3d.Vec3) {
	c.camera.SetPosition(c.eye)
	c.camera.LookAt(pos.Add(math3d.YawDir(c.yaw).Scale(c.LookAhead)).Add(math3d.V3(0, 1, 0)))
}
