package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/taigrr/tuikart/pkg/config"
	"github.com/taigrr/tuikart/pkg/track"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "tuikart",
		Usage: "Kart racing in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the JSON settings file (default: user config dir)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "race",
				Usage:  "Start a race straight away",
				Flags:  raceFlags(),
				Action: raceAction,
			},
			{
				Name:    "menu",
				Aliases: []string{"m"},
				Usage:   "Pick mode, difficulty and kart, then race",
				Flags:   raceFlags(),
				Action:  menuAction,
			},
			{
				Name:  "simulate",
				Usage: "Run a race headless with every car on autopilot and print the results",
				Flags: append(raceFlags(),
					&cli.Float64Flag{
						Name:  "time-limit",
						Usage: "Stop the race after this many simulated seconds",
						Value: 600,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				),
				Action: simulateAction,
			},
			{
				Name:  "track",
				Usage: "Generate a track and print its layout",
				Flags: append(trackFlags(),
					&cli.StringFlag{
						Name:    "export",
						Aliases: []string{"o"},
						Usage:   "Write the track mesh to a GLB file",
					},
					&cli.StringFlag{
						Name:  "snapshot",
						Usage: "Render the start grid to a PNG file",
					},
				),
				Action: trackAction,
			},
			{
				Name:  "config",
				Usage: "Manage the settings file",
				Commands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Write the default settings",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
						},
						Action: configInitAction,
					},
					{
						Name:   "show",
						Usage:  "Print the effective settings",
						Action: configShowAction,
					},
				},
			},
		},
		DefaultCommand: "menu",
	}
}

func trackFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint32Flag{
			Category: "Track",
			Name:     "seed",
			Usage:    "Track generator seed",
		},
		&cli.IntFlag{
			Category: "Track",
			Name:     "segments",
			Usage:    "Number of track segments",
		},
		&cli.IntFlag{
			Category: "Track",
			Name:     "track-level",
			Usage:    "Track difficulty preset 1-5 (overrides the shape settings)",
		},
	}
}

func raceFlags() []cli.Flag {
	return append(trackFlags(),
		&cli.StringFlag{Category: "Race", Name: "mode", Usage: "single, grandprix or timetrial"},
		&cli.IntFlag{Category: "Race", Name: "laps", Usage: "Laps per race"},
		&cli.IntFlag{Category: "Race", Name: "opponents", Usage: "AI drivers (0-7)"},
		&cli.StringFlag{Category: "Race", Name: "difficulty", Usage: "easy, medium, hard or expert"},
		&cli.StringFlag{Category: "Race", Name: "class", Usage: "Kart class: light, balanced or heavy"},
		&cli.StringFlag{Category: "Race", Name: "player", Usage: "Player name"},
		&cli.IntFlag{Category: "Display", Name: "fps", Usage: "Target frames per second"},
		&cli.StringFlag{Category: "Display", Name: "car-model", Usage: "GLB model drawn for every kart"},
		&cli.StringFlag{Category: "Logging", Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.StringFlag{Category: "Logging", Name: "log-file", Usage: "Append logs to this file"},
	)
}

func configPath(cmd *cli.Command) (string, error) {
	if p := cmd.String("config"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the settings file and applies any flags given on the
// command line.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	applyFlags(cmd, &cfg)
	return cfg, nil
}

// flagSource is the part of *cli.Command applyFlags reads.
type flagSource interface {
	IsSet(name string) bool
	String(name string) string
	Int(name string) int
	Uint32(name string) uint32
}

func applyFlags(cmd flagSource, cfg *config.Config) {
	if cmd.IsSet("seed") {
		cfg.Track.Seed = cmd.Uint32("seed")
	}
	if cmd.IsSet("track-level") {
		cfg.Track = track.ParamsForDifficulty(cmd.Int("track-level"), cfg.Track.Seed)
	}
	if cmd.IsSet("segments") {
		cfg.Track.Segments = cmd.Int("segments")
	}

	strs := map[string]*string{
		"mode":       &cfg.Mode,
		"difficulty": &cfg.Difficulty,
		"class":      &cfg.VehicleClass,
		"player":     &cfg.PlayerName,
		"car-model":  &cfg.CarModel,
		"log-level":  &cfg.LogLevel,
		"log-file":   &cfg.LogFile,
	}
	for name, dst := range strs {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}

	ints := map[string]*int{
		"laps":      &cfg.Laps,
		"opponents": &cfg.Opponents,
		"fps":       &cfg.FPS,
	}
	for name, dst := range ints {
		if cmd.IsSet(name) {
			*dst = cmd.Int(name)
		}
	}
}

// newLogger writes to the configured log file, else to fallback. A nil
// fallback discards records, which the full-screen game needs.
func newLogger(cfg config.Config, fallback io.Writer) (*slog.Logger, func() error, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, opts)), f.Close, nil
	}
	nop := func() error { return nil }
	if fallback == nil {
		return slog.New(slog.DiscardHandler), nop, nil
	}
	return slog.New(slog.NewTextHandler(fallback, opts)), nop, nil
}

func configInitAction(ctx context.Context, cmd *cli.Command) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	return nil
}

func configShowAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
