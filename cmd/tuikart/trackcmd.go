package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/urfave/cli/v3"

	"github.com/taigrr/tuikart/pkg/config"
	"github.com/taigrr/tuikart/pkg/models"
	"github.com/taigrr/tuikart/pkg/race"
	"github.com/taigrr/tuikart/pkg/render"
	"github.com/taigrr/tuikart/pkg/track"
)

// Snapshot size in terminal cells.
const snapshotCols, snapshotRows = 160, 60

func trackAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	t, err := track.Generate(cfg.Track)
	if err != nil {
		return err
	}
	printTrack(os.Stdout, t)

	if path := cmd.String("export"); path != "" {
		if err := models.SaveGLB(t.Mesh(), path); err != nil {
			return fmt.Errorf("export track: %w", err)
		}
		fmt.Println("Wrote", path)
	}
	if path := cmd.String("snapshot"); path != "" {
		if err := snapshot(cfg, path); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Println("Wrote", path)
	}
	return nil
}

func printTrack(w io.Writer, t *track.Track) {
	lo, hi := t.Bounds()
	fmt.Fprintf(w, "Seed %d: %d segments (%d closing), %.0f units, %d checkpoints\n",
		t.Seed, len(t.Segments), len(t.Segments)-t.ClosingStart, t.TotalLength, len(t.Checkpoints))
	fmt.Fprintf(w, "Bounds %.0f x %.0f x %.0f, start-finish gap %.1f\n",
		hi.X-lo.X, hi.Y-lo.Y, hi.Z-lo.Z, t.ClosureGap())

	tbl := newTable("#", "Type", "Length", "Angle", "Elevation", "Starts at")
	for i, seg := range t.Segments {
		tbl.Row(strconv.Itoa(i), seg.Type.String(),
			fmt.Sprintf("%.1f", seg.Length),
			fmt.Sprintf("%+.0f°", seg.CurveAngle),
			fmt.Sprintf("%+.1f", seg.ElevationChange),
			fmt.Sprintf("%.1f", t.SegmentStart(i)))
	}
	fmt.Fprintln(w, tbl)
}

// offscreen is a screen that is never shown.
type offscreen struct {
	uv.ScreenBuffer
}

func (offscreen) Display() error { return nil }

// snapshot renders the start grid from behind the player to a PNG.
func snapshot(cfg config.Config, path string) error {
	rc, err := cfg.RaceConfig()
	if err != nil {
		return err
	}
	s, err := race.Start(rc)
	if err != nil {
		return err
	}

	cam := render.NewCamera()
	cam.SetClipPlanes(0.3, 400)
	tr := render.NewTerminalRenderer(&offscreen{uv.NewScreenBuffer(snapshotCols, snapshotRows)}, cam)
	tr.Resize(snapshotCols, snapshotRows)

	sc, err := newScene(s, cam, cfg.CarModel, race.TickRate)
	if err != nil {
		return err
	}
	tr.BeginFrame()
	sc.draw(tr)
	sc.drawMinimap(tr.Framebuffer())
	return tr.Framebuffer().SavePNG(path)
}
