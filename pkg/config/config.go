// Package config loads and saves the game's JSON settings file.
package config

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/taigrr/tuikart/pkg/ai"
	"github.com/taigrr/tuikart/pkg/race"
	"github.com/taigrr/tuikart/pkg/track"
	"github.com/taigrr/tuikart/pkg/vehicle"
)

// FileName is the settings file inside the config directory.
const FileName = "config.json"

// lockTimeout bounds how long Save waits for another writer.
const lockTimeout = 2 * time.Second

// Config is the persisted game configuration.
type Config struct {
	Track        track.Params `json:"track"`
	Mode         string       `json:"mode"`
	Laps         int          `json:"laps"`
	Opponents    int          `json:"opponents"`
	Difficulty   string       `json:"difficulty"`
	VehicleClass string       `json:"vehicle_class"`
	PlayerName   string       `json:"player_name"`
	GrandPrix    int          `json:"grand_prix_races"`
	Countdown    float64      `json:"countdown"`
	FPS          int          `json:"fps"`
	CarModel     string       `json:"car_model,omitempty"`
	LogLevel     string       `json:"log_level"`
	LogFile      string       `json:"log_file,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Track:        track.DefaultParams(),
		Mode:         race.SingleRace.String(),
		Laps:         3,
		Opponents:    5,
		Difficulty:   ai.Medium.String(),
		VehicleClass: vehicle.Balanced.Name,
		PlayerName:   "Player",
		GrandPrix:    4,
		Countdown:    3,
		FPS:          30,
		LogLevel:     "error",
	}
}

// DefaultPath returns the settings path under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "could not find user config directory")
	}
	return filepath.Join(dir, "tuikart", FileName), nil
}

// Load reads path on top of the defaults. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "could not read config file")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "could not parse config file %s", path)
	}
	return cfg, nil
}

// Save writes cfg to path atomically: the data goes to a temp file in the
// same directory which is renamed over path while holding path's lock.
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "could not make config directory")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode config")
	}

	file, err := os.CreateTemp(dir, ".tmp_"+filepath.Base(path))
	if err != nil {
		return errors.Wrap(err, "could not create temp config file")
	}
	tmpName := file.Name()
	defer os.Remove(tmpName)

	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		return errors.Wrap(err, "could not write temp config file")
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return errors.Wrap(err, "could not fsync temp config file")
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "could not close temp config file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	fileLock := flock.New(path + ".lock")
	locked, err := fileLock.TryLockContext(ctx, 5*time.Millisecond)
	if err != nil {
		return errors.Wrap(err, "could not lock config file")
	}
	if !locked {
		return errors.New("could not obtain config lock")
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			slog.Error("could not unlock config file", "error", err)
		}
	}()

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "could not move temp config file into place")
	}
	return nil
}

// RaceConfig converts the settings into a race configuration.
func (c Config) RaceConfig() (race.Config, error) {
	rc := race.DefaultConfig()

	mode, err := race.ParseMode(c.Mode)
	if err != nil {
		return rc, err
	}
	difficulty, err := ai.ParseDifficulty(c.Difficulty)
	if err != nil {
		return rc, err
	}
	class, err := vehicle.ClassByName(c.VehicleClass)
	if err != nil {
		return rc, err
	}
	if err := c.Track.Validate(); err != nil {
		return rc, err
	}

	rc.Mode = mode
	rc.Laps = c.Laps
	rc.Opponents = c.Opponents
	rc.Difficulty = difficulty
	rc.Class = class
	rc.Track = c.Track
	rc.PlayerName = c.PlayerName
	rc.Countdown = c.Countdown
	return rc, rc.Validate()
}

// Level maps LogLevel onto a slog level. Unknown names mean error.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	}
	return slog.LevelError
}
