package main

import (
	"fmt"

	"github.com/taigrr/tuikart/pkg/math3d"
	"github.com/taigrr/tuikart/pkg/models"
	"github.com/taigrr/tuikart/pkg/race"
	"github.com/taigrr/tuikart/pkg/render"
)

// groundMargin is how far the grass extends past the track bounds.
const groundMargin = 200.0

// cameraViews are the chase distances cycled with the camera button.
var cameraViews = [...]struct{ distance, height, lookAhead float64 }{
	{7, 3, 6},
	{14, 6, 8},
	{3.5, 1.5, 10},
}

// scene holds the meshes and camera rig for drawing one session.
type scene struct {
	session *race.Session
	road    *models.Mesh
	ground  *models.Mesh
	karts   []*models.Mesh // by vehicle ID
	tints   []render.Color
	minimap *render.Minimap
	chase   *render.ChaseCamera
	view    int
}

// newScene builds the meshes for s. carModel, when set, is a GLB drawn for
// every kart and tinted by grid slot; otherwise each kart gets the built-in
// model in its livery.
func newScene(s *race.Session, cam *render.Camera, carModel string, fps int) (*scene, error) {
	sc := &scene{
		session: s,
		road:    s.Track.Mesh(),
		chase:   render.NewChaseCamera(cam, fps),
	}

	lo, hi := s.Track.Bounds()
	sc.ground = models.NewMesh("ground")
	grass := sc.ground.AddMaterial("grass", 0.18, 0.47, 0.2)
	y := lo.Y - 0.3
	sc.ground.AddQuad(
		math3d.V3(lo.X-groundMargin, y, lo.Z-groundMargin),
		math3d.V3(hi.X+groundMargin, y, lo.Z-groundMargin),
		math3d.V3(hi.X+groundMargin, y, hi.Z+groundMargin),
		math3d.V3(lo.X-groundMargin, y, hi.Z+groundMargin),
		math3d.Up(), grass,
	)
	sc.ground.CalculateBounds()

	var shared *models.Mesh
	if carModel != "" {
		m, err := models.LoadGLB(carModel)
		if err != nil {
			return nil, fmt.Errorf("load car model: %w", err)
		}
		m.FitTo(models.KartLength)
		shared = m
	}
	for _, v := range s.Vehicles {
		livery := render.KartColors[v.ID%len(render.KartColors)]
		if shared != nil {
			sc.karts = append(sc.karts, shared)
			sc.tints = append(sc.tints, livery)
			continue
		}
		sc.karts = append(sc.karts, models.NewKart(v.Name, float64(livery.R)/255, float64(livery.G)/255, float64(livery.B)/255))
		sc.tints = append(sc.tints, render.ColorWhite)
	}

	path := make([]math3d.Vec3, 0, len(s.Track.Segments)+1)
	for _, seg := range s.Track.Segments {
		path = append(path, seg.Start)
	}
	if n := len(s.Track.Segments); n > 0 {
		path = append(path, s.Track.Segments[n-1].End)
	}
	sc.minimap = render.NewMinimap(path, 24, 24)

	sc.applyView()
	p := s.Player
	sc.chase.Reset(p.Position, p.Yaw)
	return sc, nil
}

func (sc *scene) cycleView() {
	sc.view = (sc.view + 1) % len(cameraViews)
	sc.applyView()
}

func (sc *scene) applyView() {
	v := cameraViews[sc.view]
	sc.chase.Distance, sc.chase.Height, sc.chase.LookAhead = v.distance, v.height, v.lookAhead
}

// follow moves the camera one frame toward the player.
func (sc *scene) follow() {
	p := sc.session.Player
	sc.chase.Follow(p.Position, p.Yaw)
}

// draw renders the 3D scene.
func (sc *scene) draw(r render.Renderer) {
	s := sc.session
	r.Clear(render.ColorSky)
	r.DrawMesh(sc.ground, math3d.Identity(), render.ColorWhite)
	r.DrawMesh(sc.road, math3d.Identity(), render.ColorWhite)

	for _, v := range s.Vehicles {
		r.DrawMesh(sc.karts[v.ID], v.Transform(), sc.tints[v.ID])
	}

	// Marker over the next gate the player has to pass.
	if cps := s.Track.Checkpoints; len(cps) > 0 && !s.Player.Finished {
		next := cps[(s.Player.CurrentCheckpoint+1)%len(cps)]
		r.DrawQuad(next.Position.Add(math3d.V3(0, 4, 0)), 1.2, 1.2, render.ColorYellow)
	}
}

// drawMinimap plots the track and every kart in the top-right corner.
func (sc *scene) drawMinimap(fb *render.Framebuffer) {
	markers := make([]render.Marker, 0, len(sc.session.Vehicles))
	for _, v := range sc.session.Vehicles {
		if v == sc.session.Player {
			continue
		}
		markers = append(markers, render.Marker{Position: v.Position, Color: render.KartColors[v.ID%len(render.KartColors)]})
	}
	// Player last so it stays on top.
	markers = append(markers, render.Marker{Position: sc.session.Player.Position, Color: render.ColorWhite})

	x := fb.Width - sc.minimap.Width - 2
	if x < 0 {
		return
	}
	sc.minimap.Draw(fb, x, 4, render.RGB(200, 200, 200), markers)
}
