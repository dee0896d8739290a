package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/urfave/cli/v3"

	"github.com/taigrr/tuikart/pkg/config"
	"github.com/taigrr/tuikart/pkg/input"
	"github.com/taigrr/tuikart/pkg/race"
	"github.com/taigrr/tuikart/pkg/render"
)

func raceAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return play(ctx, cfg)
}

// game is the state of an interactive run: the current session plus the
// championship it belongs to, if any.
type game struct {
	cfg     config.Config
	rc      race.Config
	champ   *race.Championship
	session *race.Session
	scene   *scene
	cam     *render.Camera
	fps     int
	log     *slog.Logger

	recorded bool
}

// start loads the next race: the next championship round, or a rerun of
// the same configuration.
func (g *game) start() error {
	var (
		s   *race.Session
		err error
	)
	switch {
	case g.champ != nil:
		if g.champ.Done() {
			return nil
		}
		s, err = g.champ.Next()
	case g.session != nil:
		s, err = g.session.Restart()
	default:
		s, err = race.Start(g.rc)
	}
	if err != nil {
		return err
	}

	view := 0
	if g.scene != nil {
		view = g.scene.view
	}
	sc, err := newScene(s, g.cam, g.cfg.CarModel, g.fps)
	if err != nil {
		return err
	}
	sc.view = view
	sc.applyView()

	g.session, g.scene, g.recorded = s, sc, false
	g.log.Info("race loaded", "session", s.ID, "seed", s.Config.Track.Seed, "mode", s.Config.Mode)
	return nil
}

// play runs the full-screen game until the player quits or ctx ends.
func play(ctx context.Context, cfg config.Config) error {
	logger, closeLog, err := newLogger(cfg, nil)
	if err != nil {
		return err
	}
	defer closeLog()

	rc, err := cfg.RaceConfig()
	if err != nil {
		return err
	}
	rc.Logger = logger

	fps := cfg.FPS
	if fps <= 0 {
		fps = config.Default().FPS
	}

	g := &game{cfg: cfg, rc: rc, fps: fps, log: logger}
	if rc.Mode == race.GrandPrix {
		if g.champ, err = race.NewChampionship(rc, cfg.GrandPrix); err != nil {
			return err
		}
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	g.cam = render.NewCamera()
	g.cam.SetClipPlanes(0.3, 400)
	tr := render.NewTerminalRenderer(term, g.cam)
	tr.Resize(width, height)

	if err := g.start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	kb := input.NewKeyboard()
	events := make(chan uv.Event, 16)
	go func() {
		for ev := range term.Events() {
			if kb.HandleEvent(ev) {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	clock := race.NewClock(race.TickRate)
	frameBudget := time.Second / time.Duration(fps)
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev := <-events:
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					width, height = ev.Width, ev.Height
					term.Erase()
					term.Resize(width, height)
					tr.Resize(width, height)
				case uv.KeyPressEvent:
					switch {
					case ev.MatchString("escape", "ctrl+c", "q"):
						return nil
					case ev.MatchString("enter") && g.session.Phase == race.Over:
						if err := g.start(); err != nil {
							return err
						}
					}
				}
			default:
				break drain
			}
		}

		now := time.Now()
		for range clock.Advance(now.Sub(lastFrame).Seconds()) {
			in := kb.Poll()
			if in.Buttons.Has(input.ButtonCamera) {
				g.scene.cycleView()
			}
			g.session.Tick(clock.Step, in)
		}
		lastFrame = now

		if g.session.Phase == race.Over && g.champ != nil && !g.recorded {
			g.champ.Record(g.session.Results())
			g.recorded = true
			g.log.Info("round recorded", "round", g.champ.Round, "of", g.champ.Races)
		}

		g.scene.follow()
		tr.BeginFrame()
		g.scene.draw(tr)
		g.scene.drawMinimap(tr.Framebuffer())
		drawHUD(tr, g.session, g.champ, width, height)
		if err := tr.EndFrame(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(now); elapsed < frameBudget {
			time.Sleep(frameBudget - elapsed)
		}
	}
}
