// Package fixturelib loads fixture definitions from a directory of JSON
// profile files and keeps them available to the rest of the pipeline. The
// on-disk layout is free-form; any *.json file at any depth is a profile.
package fixturelib

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/luxstudio/cuegen/lighting"
)

// fileDefinition is the on-disk profile shape. Channel offsets are implied
// by array position; value ranges default to the full 0-255 span.
type fileDefinition struct {
	Manufacturer string        `json:"manufacturer"`
	Model        string        `json:"model"`
	Type         string        `json:"type"`
	Channels     []fileChannel `json:"channels"`
}

type fileChannel struct {
	Name         string `json:"name,omitempty"`
	Type         string `json:"type"`
	MinValue     *int   `json:"minValue,omitempty"`
	MaxValue     *int   `json:"maxValue,omitempty"`
	DefaultValue int    `json:"defaultValue,omitempty"`
}

// Library is an in-memory view of a fixture-profile directory. All methods
// are safe for concurrent use; Reload swaps the whole view atomically.
type Library struct {
	dir    string
	logger *slog.Logger

	mu   sync.RWMutex
	defs []lighting.FixtureDefinition
}

// Open loads every profile under dir. Individual malformed files are logged
// and skipped; only an unreadable directory fails the call.
func Open(dir string, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lib := &Library{dir: dir, logger: logger}
	if err := lib.Reload(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Dir returns the profile directory the library reads from.
func (l *Library) Dir() string {
	return l.dir
}

// Reload re-scans the profile directory and replaces the current view.
func (l *Library) Reload() error {
	paths, err := doublestar.Glob(os.DirFS(l.dir), "**/*.json")
	if err != nil {
		return fmt.Errorf("scan fixture library %s: %w", l.dir, err)
	}
	sort.Strings(paths)

	defs := make([]lighting.FixtureDefinition, 0, len(paths))
	for _, rel := range paths {
		def, err := loadDefinition(filepath.Join(l.dir, rel))
		if err != nil {
			l.logger.Warn("Skipping fixture profile", "path", rel, "error", err)
			continue
		}
		defs = append(defs, def)
	}

	l.mu.Lock()
	l.defs = defs
	l.mu.Unlock()

	l.logger.Info("Fixture library loaded", "dir", l.dir, "definitions", len(defs))
	return nil
}

// Definitions returns a copy of the loaded definitions.
func (l *Library) Definitions() []lighting.FixtureDefinition {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]lighting.FixtureDefinition(nil), l.defs...)
}

// Find returns the definition matching manufacturer and model, ignoring
// case, or nil when no profile matches.
func (l *Library) Find(manufacturer, model string) *lighting.FixtureDefinition {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := range l.defs {
		if strings.EqualFold(l.defs[i].Manufacturer, manufacturer) &&
			strings.EqualFold(l.defs[i].Model, model) {
			def := l.defs[i]
			return &def
		}
	}
	return nil
}

func loadDefinition(path string) (lighting.FixtureDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return lighting.FixtureDefinition{}, err
	}

	var fd fileDefinition
	if err := json.Unmarshal(data, &fd); err != nil {
		return lighting.FixtureDefinition{}, fmt.Errorf("parse profile: %w", err)
	}
	if fd.Model == "" {
		return lighting.FixtureDefinition{}, fmt.Errorf("profile has no model")
	}
	if len(fd.Channels) == 0 {
		return lighting.FixtureDefinition{}, fmt.Errorf("profile %s has no channels", fd.Model)
	}

	def := lighting.FixtureDefinition{
		ID:           definitionID(fd.Manufacturer, fd.Model),
		Manufacturer: fd.Manufacturer,
		Model:        fd.Model,
		Type:         fd.Type,
		Channels:     make([]lighting.Channel, 0, len(fd.Channels)),
	}

	for i, fc := range fd.Channels {
		ch := lighting.Channel{
			ID:           channelID(def.ID, i, fc),
			Offset:       i,
			Type:         lighting.ParseChannelType(fc.Type),
			MaxValue:     255,
			DefaultValue: fc.DefaultValue,
		}
		if fc.MinValue != nil {
			ch.MinValue = *fc.MinValue
		}
		if fc.MaxValue != nil {
			ch.MaxValue = *fc.MaxValue
		}
		def.Channels = append(def.Channels, ch)
	}
	return def, nil
}

func definitionID(manufacturer, model string) string {
	return slug(manufacturer) + "/" + slug(model)
}

func channelID(defID string, offset int, fc fileChannel) string {
	name := fc.Name
	if name == "" {
		name = fmt.Sprintf("%s-%d", fc.Type, offset)
	}
	return defID + ":" + slug(name)
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}
