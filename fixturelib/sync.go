package fixturelib

import (
	"context"
	"fmt"
	"strings"

	"github.com/luxstudio/cuegen/backend"
)

// SyncTo pushes library definitions the backend does not know yet, matched
// by manufacturer and model ignoring case. Returns how many were created.
func (l *Library) SyncTo(ctx context.Context, svc backend.Service) (int, error) {
	existing, err := svc.GetFixtureDefinitions(ctx)
	if err != nil {
		return 0, fmt.Errorf("sync fixture library: %w", err)
	}

	known := make(map[string]bool, len(existing))
	for _, def := range existing {
		known[syncKey(def.Manufacturer, def.Model)] = true
	}

	created := 0
	for _, def := range l.Definitions() {
		if known[syncKey(def.Manufacturer, def.Model)] {
			continue
		}
		if _, err := svc.CreateFixtureDefinition(ctx, def); err != nil {
			return created, fmt.Errorf("sync fixture library: create %s %s: %w", def.Manufacturer, def.Model, err)
		}
		created++
	}

	l.logger.Info("Fixture library synced", "created", created, "already_known", len(known))
	return created, nil
}

func syncKey(manufacturer, model string) string {
	return strings.ToLower(manufacturer) + "\x00" + strings.ToLower(model)
}
