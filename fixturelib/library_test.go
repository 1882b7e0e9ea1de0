package fixturelib

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/luxstudio/cuegen/backend/backendtest"
	"github.com/luxstudio/cuegen/lighting"
)

const parProfile = `{
	"manufacturer": "Chauvet",
	"model": "SlimPAR 56",
	"type": "par",
	"channels": [
		{"name": "dimmer", "type": "intensity"},
		{"type": "red"},
		{"type": "green"},
		{"type": "blue"}
	]
}`

const moverProfile = `{
	"manufacturer": "Martin",
	"model": "MAC Aura",
	"type": "moving_head",
	"channels": [
		{"type": "intensity"},
		{"type": "pan", "minValue": 0, "maxValue": 170},
		{"type": "tilt", "maxValue": 90}
	]
}`

func writeProfiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "chauvet"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"chauvet/slimpar56.json": parProfile,
		"mac-aura.json":          moverProfile,
		"notes.txt":              "not a profile",
		"broken.json":            "{not json",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestOpenDiscoversNestedProfiles(t *testing.T) {
	lib, err := Open(writeProfiles(t), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	defs := lib.Definitions()
	if len(defs) != 2 {
		t.Fatalf("definitions = %d, want 2 (broken and non-json skipped)", len(defs))
	}

	par := lib.Find("chauvet", "slimpar 56")
	if par == nil {
		t.Fatal("Find should match ignoring case")
	}
	if len(par.Channels) != 4 {
		t.Fatalf("channels = %d, want 4", len(par.Channels))
	}
	if par.Channels[0].Offset != 0 || par.Channels[3].Offset != 3 {
		t.Error("offsets should follow array position")
	}
	if par.Channels[1].Type != lighting.ChannelRed {
		t.Errorf("channel type = %q", par.Channels[1].Type)
	}
	if par.Channels[0].MinValue != 0 || par.Channels[0].MaxValue != 255 {
		t.Errorf("default range = [%d, %d], want [0, 255]", par.Channels[0].MinValue, par.Channels[0].MaxValue)
	}

	mover := lib.Find("Martin", "MAC Aura")
	if mover == nil {
		t.Fatal("Find(Martin, MAC Aura)")
	}
	if mover.Channels[1].MaxValue != 170 || mover.Channels[2].MaxValue != 90 {
		t.Error("explicit channel ranges should survive loading")
	}
}

func TestReloadPicksUpNewProfiles(t *testing.T) {
	dir := writeProfiles(t)
	lib, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	extra := `{"manufacturer": "ETC", "model": "S4", "type": "ellipsoidal", "channels": [{"type": "intensity"}]}`
	if err := os.WriteFile(filepath.Join(dir, "s4.json"), []byte(extra), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(lib.Definitions()) != 3 {
		t.Fatalf("definitions = %d, want 3 after reload", len(lib.Definitions()))
	}
}

func TestSyncTo(t *testing.T) {
	lib, err := Open(writeProfiles(t), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	fake := backendtest.NewFake()
	ctx := context.Background()

	created, err := lib.SyncTo(ctx, fake)
	if err != nil {
		t.Fatalf("SyncTo: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}

	// A second sync finds everything already known.
	created, err = lib.SyncTo(ctx, fake)
	if err != nil {
		t.Fatalf("SyncTo: %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0 on repeat sync", created)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := writeProfiles(t)
	lib, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	w, err := NewWatcher(lib, nil, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	extra := `{"manufacturer": "ETC", "model": "S4", "type": "ellipsoidal", "channels": [{"type": "intensity"}]}`
	if err := os.WriteFile(filepath.Join(dir, "s4.json"), []byte(extra), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Reloads():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	if lib.Find("ETC", "S4") == nil {
		t.Error("new profile should be visible after watcher reload")
	}
}
