// Package backend defines the call contract against the lighting persistence
// service, plus the request/response shapes it exchanges. The service itself
// is an external collaborator; this package owns only the contract and an
// HTTP adapter for it.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxstudio/cuegen/lighting"
)

// ErrNotFound is the sentinel matched by errors.Is for any missing entity.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing entity by kind and id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound creates a NotFoundError for the given entity kind and id.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// FixtureFilter narrows fixture-instance listings. NamePattern supports glob
// syntax including ** (doublestar), matched against the fixture name.
type FixtureFilter struct {
	ProjectID   string `json:"projectId,omitempty"`
	NamePattern string `json:"namePattern,omitempty"`
	Type        string `json:"type,omitempty"`
	Tag         string `json:"tag,omitempty"`
}

// FixturePage is one page of a fixture-instance listing.
type FixturePage struct {
	Fixtures   []lighting.FixtureInstance `json:"fixtures"`
	Pagination lighting.Pagination        `json:"pagination"`
}

// CreateFixtureRequest carries the fields for a new fixture instance.
type CreateFixtureRequest struct {
	ProjectID    string              `json:"projectId"`
	Name         string              `json:"name"`
	Type         string              `json:"type"`
	Channels     []lighting.Channel  `json:"channels"`
	Universe     int                 `json:"universe"`
	StartChannel int                 `json:"startChannel"`
	Tags         []string            `json:"tags,omitempty"`
}

// UpdateFixtureRequest carries optional fixture mutations; nil fields are
// left unchanged.
type UpdateFixtureRequest struct {
	Name         *string  `json:"name,omitempty"`
	Universe     *int     `json:"universe,omitempty"`
	StartChannel *int     `json:"startChannel,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// BulkFixtureUpdate applies the same mutations to every listed fixture in a
// single backend call.
type BulkFixtureUpdate struct {
	FixtureIDs []string `json:"fixtureIds"`
	Universe   *int     `json:"universe,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// CreateCueRequest carries the fields for a new cue.
type CreateCueRequest struct {
	CueListID   string   `json:"cueListId"`
	Name        string   `json:"name"`
	CueNumber   float64  `json:"cueNumber"`
	SceneID     string   `json:"sceneId"`
	FadeInTime  float64  `json:"fadeInTime"`
	FadeOutTime float64  `json:"fadeOutTime"`
	FollowTime  *float64 `json:"followTime,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// UpdateCueRequest carries optional cue mutations; nil fields are left
// unchanged. ClearFollow removes an existing follow time.
type UpdateCueRequest struct {
	Name        *string  `json:"name,omitempty"`
	CueNumber   *float64 `json:"cueNumber,omitempty"`
	SceneID     *string  `json:"sceneId,omitempty"`
	FadeInTime  *float64 `json:"fadeInTime,omitempty"`
	FadeOutTime *float64 `json:"fadeOutTime,omitempty"`
	FollowTime  *float64 `json:"followTime,omitempty"`
	ClearFollow bool     `json:"clearFollow,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
}

// BulkCueUpdate applies the same timing mutations to every listed cue in a
// single backend call.
type BulkCueUpdate struct {
	CueIDs      []string `json:"cueIds"`
	FadeInTime  *float64 `json:"fadeInTime,omitempty"`
	FadeOutTime *float64 `json:"fadeOutTime,omitempty"`
	FollowTime  *float64 `json:"followTime,omitempty"`
}

// UpdateCueListRequest carries optional cue-list mutations.
type UpdateCueListRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Session identifies an active playback run of one cue list. It is an
// explicit value the caller holds; the core never keeps a current session.
type Session struct {
	ID        string `json:"id"`
	CueListID string `json:"cueListId"`
}

// PlaybackStatus reports where a playback session currently stands.
type PlaybackStatus struct {
	Session      Session       `json:"session"`
	CurrentIndex int           `json:"currentIndex"`
	CurrentCue   *lighting.Cue `json:"currentCue,omitempty"`
	Running      bool          `json:"running"`
}

// Service is the persistence/query contract consumed by the generation,
// analysis and bulk layers. Implementations must treat every call as
// stateless; all ordering requirements live in the callers.
type Service interface {
	GetProject(ctx context.Context, id string) (*lighting.Project, error)

	GetCueList(ctx context.Context, id string) (*lighting.CueList, error)
	CreateCueList(ctx context.Context, name, description, projectID string) (*lighting.CueList, error)
	UpdateCueList(ctx context.Context, id string, req UpdateCueListRequest) (*lighting.CueList, error)
	DeleteCueList(ctx context.Context, id string) (bool, error)

	CreateCue(ctx context.Context, req CreateCueRequest) (*lighting.Cue, error)
	UpdateCue(ctx context.Context, id string, req UpdateCueRequest) (*lighting.Cue, error)
	DeleteCue(ctx context.Context, id string) (bool, error)
	BulkUpdateCues(ctx context.Context, req BulkCueUpdate) ([]lighting.Cue, error)

	GetFixtureInstances(ctx context.Context, filter FixtureFilter, page, perPage int) (*FixturePage, error)
	GetFixtureInstance(ctx context.Context, id string) (*lighting.FixtureInstance, error)
	CreateFixtureInstance(ctx context.Context, req CreateFixtureRequest) (*lighting.FixtureInstance, error)
	UpdateFixtureInstance(ctx context.Context, id string, req UpdateFixtureRequest) (*lighting.FixtureInstance, error)
	DeleteFixtureInstance(ctx context.Context, id string) (bool, error)
	BulkUpdateFixtures(ctx context.Context, req BulkFixtureUpdate) ([]lighting.FixtureInstance, error)

	GetFixtureDefinitions(ctx context.Context) ([]lighting.FixtureDefinition, error)
	CreateFixtureDefinition(ctx context.Context, def lighting.FixtureDefinition) (*lighting.FixtureDefinition, error)

	StartCueList(ctx context.Context, cueListID string, startIndex int) (*Session, error)
	NextCue(ctx context.Context, session Session) (*PlaybackStatus, error)
	PreviousCue(ctx context.Context, session Session) (*PlaybackStatus, error)
	GoToCue(ctx context.Context, session Session, cueIndex int) (*PlaybackStatus, error)
	StopCueList(ctx context.Context, session Session) error
	GetPlaybackStatus(ctx context.Context, session Session) (*PlaybackStatus, error)
	GetCurrentActiveScene(ctx context.Context, session Session) (*lighting.Scene, error)
}
