// Package backendtest provides an in-memory backend.Service implementation
// for tests and for running the pipeline without a persistence deployment.
package backendtest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/luxstudio/cuegen/backend"
	"github.com/luxstudio/cuegen/lighting"
)

// Fake is an in-memory backend. All methods are safe for concurrent use.
type Fake struct {
	mu          sync.Mutex
	projects    map[string]*lighting.Project
	definitions []lighting.FixtureDefinition
	sessions    map[string]*playback

	// FailCreateFixture, when set, makes CreateFixtureInstance fail for
	// fixtures with a matching name. Used to exercise partial-failure
	// paths in bulk creation.
	FailCreateFixture func(name string) error
}

type playback struct {
	session backend.Session
	index   int
	running bool
}

// NewFake creates an empty fake backend.
func NewFake() *Fake {
	return &Fake{
		projects: make(map[string]*lighting.Project),
		sessions: make(map[string]*playback),
	}
}

var _ backend.Service = (*Fake)(nil)

// AddProject seeds a project. The project is stored by reference so tests
// can mutate it between calls.
func (f *Fake) AddProject(p *lighting.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	f.projects[p.ID] = p
}

func (f *Fake) GetProject(_ context.Context, id string) (*lighting.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, backend.NewNotFound("project", id)
	}
	return p, nil
}

func (f *Fake) findCueList(id string) (*lighting.Project, *lighting.CueList) {
	for _, p := range f.projects {
		for i := range p.CueLists {
			if p.CueLists[i].ID == id {
				return p, &p.CueLists[i]
			}
		}
	}
	return nil, nil
}

func (f *Fake) GetCueList(_ context.Context, id string) (*lighting.CueList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, cl := f.findCueList(id)
	if cl == nil {
		return nil, backend.NewNotFound("cue list", id)
	}
	copied := *cl
	copied.Cues = append([]lighting.Cue(nil), cl.Cues...)
	sort.Slice(copied.Cues, func(i, j int) bool { return copied.Cues[i].CueNumber < copied.Cues[j].CueNumber })
	return &copied, nil
}

func (f *Fake) CreateCueList(_ context.Context, name, description, projectID string) (*lighting.CueList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[projectID]
	if !ok {
		return nil, backend.NewNotFound("project", projectID)
	}
	cl := lighting.CueList{ID: uuid.New().String(), Name: name, Description: description}
	p.CueLists = append(p.CueLists, cl)
	return &cl, nil
}

func (f *Fake) UpdateCueList(_ context.Context, id string, req backend.UpdateCueListRequest) (*lighting.CueList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, cl := f.findCueList(id)
	if cl == nil {
		return nil, backend.NewNotFound("cue list", id)
	}
	if req.Name != nil {
		cl.Name = *req.Name
	}
	if req.Description != nil {
		cl.Description = *req.Description
	}
	copied := *cl
	return &copied, nil
}

func (f *Fake) DeleteCueList(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		for i := range p.CueLists {
			if p.CueLists[i].ID == id {
				p.CueLists = append(p.CueLists[:i], p.CueLists[i+1:]...)
				return true, nil
			}
		}
	}
	return false, backend.NewNotFound("cue list", id)
}

func (f *Fake) CreateCue(_ context.Context, req backend.CreateCueRequest) (*lighting.Cue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, cl := f.findCueList(req.CueListID)
	if cl == nil {
		return nil, backend.NewNotFound("cue list", req.CueListID)
	}
	cue := lighting.Cue{
		ID:          uuid.New().String(),
		Name:        req.Name,
		CueNumber:   req.CueNumber,
		SceneID:     req.SceneID,
		FadeInTime:  req.FadeInTime,
		FadeOutTime: req.FadeOutTime,
		FollowTime:  req.FollowTime,
		Notes:       req.Notes,
	}
	cl.Cues = append(cl.Cues, cue)
	return &cue, nil
}

func (f *Fake) findCue(id string) *lighting.Cue {
	for _, p := range f.projects {
		for i := range p.CueLists {
			for j := range p.CueLists[i].Cues {
				if p.CueLists[i].Cues[j].ID == id {
					return &p.CueLists[i].Cues[j]
				}
			}
		}
	}
	return nil
}

func (f *Fake) UpdateCue(_ context.Context, id string, req backend.UpdateCueRequest) (*lighting.Cue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cue := f.findCue(id)
	if cue == nil {
		return nil, backend.NewNotFound("cue", id)
	}
	applyCueUpdate(cue, req)
	copied := *cue
	return &copied, nil
}

func applyCueUpdate(cue *lighting.Cue, req backend.UpdateCueRequest) {
	if req.Name != nil {
		cue.Name = *req.Name
	}
	if req.CueNumber != nil {
		cue.CueNumber = *req.CueNumber
	}
	if req.SceneID != nil {
		cue.SceneID = *req.SceneID
	}
	if req.FadeInTime != nil {
		cue.FadeInTime = *req.FadeInTime
	}
	if req.FadeOutTime != nil {
		cue.FadeOutTime = *req.FadeOutTime
	}
	if req.ClearFollow {
		cue.FollowTime = nil
	} else if req.FollowTime != nil {
		cue.FollowTime = req.FollowTime
	}
	if req.Notes != nil {
		cue.Notes = *req.Notes
	}
}

func (f *Fake) DeleteCue(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		for i := range p.CueLists {
			cues := p.CueLists[i].Cues
			for j := range cues {
				if cues[j].ID == id {
					p.CueLists[i].Cues = append(cues[:j], cues[j+1:]...)
					return true, nil
				}
			}
		}
	}
	return false, backend.NewNotFound("cue", id)
}

func (f *Fake) BulkUpdateCues(_ context.Context, req backend.BulkCueUpdate) ([]lighting.Cue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	updated := make([]lighting.Cue, 0, len(req.CueIDs))
	for _, id := range req.CueIDs {
		cue := f.findCue(id)
		if cue == nil {
			return nil, backend.NewNotFound("cue", id)
		}
		if req.FadeInTime != nil {
			cue.FadeInTime = *req.FadeInTime
		}
		if req.FadeOutTime != nil {
			cue.FadeOutTime = *req.FadeOutTime
		}
		if req.FollowTime != nil {
			cue.FollowTime = req.FollowTime
		}
		updated = append(updated, *cue)
	}
	return updated, nil
}

func (f *Fake) GetFixtureInstances(_ context.Context, filter backend.FixtureFilter, page, perPage int) (*backend.FixturePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []lighting.FixtureInstance
	for _, p := range f.projects {
		if filter.ProjectID != "" && p.ID != filter.ProjectID {
			continue
		}
		for _, fx := range p.Fixtures {
			if filter.Type != "" && fx.Type != filter.Type {
				continue
			}
			if filter.Tag != "" && !hasTag(fx.Tags, filter.Tag) {
				continue
			}
			if filter.NamePattern != "" {
				ok, err := doublestar.Match(filter.NamePattern, fx.Name)
				if err != nil || !ok {
					continue
				}
			}
			matched = append(matched, fx)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	start, end := lighting.SlicePage(len(matched), page, perPage)
	return &backend.FixturePage{
		Fixtures:   matched[start:end],
		Pagination: lighting.PageOf(len(matched), page, perPage),
	}, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func (f *Fake) findFixture(id string) *lighting.FixtureInstance {
	for _, p := range f.projects {
		if fx := p.FixtureByID(id); fx != nil {
			return fx
		}
	}
	return nil
}

func (f *Fake) GetFixtureInstance(_ context.Context, id string) (*lighting.FixtureInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fx := f.findFixture(id)
	if fx == nil {
		return nil, backend.NewNotFound("fixture", id)
	}
	copied := *fx
	return &copied, nil
}

func (f *Fake) CreateFixtureInstance(_ context.Context, req backend.CreateFixtureRequest) (*lighting.FixtureInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreateFixture != nil {
		if err := f.FailCreateFixture(req.Name); err != nil {
			return nil, err
		}
	}
	p, ok := f.projects[req.ProjectID]
	if !ok {
		return nil, backend.NewNotFound("project", req.ProjectID)
	}
	fx := lighting.FixtureInstance{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Type:         req.Type,
		Channels:     req.Channels,
		ChannelCount: len(req.Channels),
		Universe:     req.Universe,
		StartChannel: req.StartChannel,
		Tags:         req.Tags,
	}
	p.Fixtures = append(p.Fixtures, fx)
	return &fx, nil
}

func (f *Fake) UpdateFixtureInstance(_ context.Context, id string, req backend.UpdateFixtureRequest) (*lighting.FixtureInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fx := f.findFixture(id)
	if fx == nil {
		return nil, backend.NewNotFound("fixture", id)
	}
	if req.Name != nil {
		fx.Name = *req.Name
	}
	if req.Universe != nil {
		fx.Universe = *req.Universe
	}
	if req.StartChannel != nil {
		fx.StartChannel = *req.StartChannel
	}
	if req.Tags != nil {
		fx.Tags = req.Tags
	}
	copied := *fx
	return &copied, nil
}

func (f *Fake) DeleteFixtureInstance(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		for i := range p.Fixtures {
			if p.Fixtures[i].ID == id {
				p.Fixtures = append(p.Fixtures[:i], p.Fixtures[i+1:]...)
				return true, nil
			}
		}
	}
	return false, backend.NewNotFound("fixture", id)
}

func (f *Fake) BulkUpdateFixtures(_ context.Context, req backend.BulkFixtureUpdate) ([]lighting.FixtureInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	updated := make([]lighting.FixtureInstance, 0, len(req.FixtureIDs))
	for _, id := range req.FixtureIDs {
		fx := f.findFixture(id)
		if fx == nil {
			return nil, backend.NewNotFound("fixture", id)
		}
		if req.Universe != nil {
			fx.Universe = *req.Universe
		}
		if req.Tags != nil {
			fx.Tags = req.Tags
		}
		updated = append(updated, *fx)
	}
	return updated, nil
}

func (f *Fake) GetFixtureDefinitions(_ context.Context) ([]lighting.FixtureDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]lighting.FixtureDefinition(nil), f.definitions...), nil
}

func (f *Fake) CreateFixtureDefinition(_ context.Context, def lighting.FixtureDefinition) (*lighting.FixtureDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if def.ID == "" {
		def.ID = uuid.New().String()
	}
	f.definitions = append(f.definitions, def)
	return &def, nil
}

func (f *Fake) StartCueList(_ context.Context, cueListID string, startIndex int) (*backend.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, cl := f.findCueList(cueListID)
	if cl == nil {
		return nil, backend.NewNotFound("cue list", cueListID)
	}
	s := backend.Session{ID: uuid.New().String(), CueListID: cueListID}
	f.sessions[s.ID] = &playback{session: s, index: startIndex, running: true}
	return &s, nil
}

func (f *Fake) NextCue(ctx context.Context, session backend.Session) (*backend.PlaybackStatus, error) {
	return f.step(session, +1)
}

func (f *Fake) PreviousCue(ctx context.Context, session backend.Session) (*backend.PlaybackStatus, error) {
	return f.step(session, -1)
}

func (f *Fake) GoToCue(_ context.Context, session backend.Session, cueIndex int) (*backend.PlaybackStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pb, ok := f.sessions[session.ID]
	if !ok {
		return nil, backend.NewNotFound("playback session", session.ID)
	}
	pb.index = cueIndex
	return f.statusLocked(pb)
}

func (f *Fake) step(session backend.Session, delta int) (*backend.PlaybackStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pb, ok := f.sessions[session.ID]
	if !ok {
		return nil, backend.NewNotFound("playback session", session.ID)
	}
	pb.index += delta
	if pb.index < 0 {
		pb.index = 0
	}
	return f.statusLocked(pb)
}

func (f *Fake) statusLocked(pb *playback) (*backend.PlaybackStatus, error) {
	st := &backend.PlaybackStatus{
		Session:      pb.session,
		CurrentIndex: pb.index,
		Running:      pb.running,
	}
	_, cl := f.findCueList(pb.session.CueListID)
	if cl != nil {
		cues := append([]lighting.Cue(nil), cl.Cues...)
		sort.Slice(cues, func(i, j int) bool { return cues[i].CueNumber < cues[j].CueNumber })
		if pb.index >= 0 && pb.index < len(cues) {
			cue := cues[pb.index]
			st.CurrentCue = &cue
		}
	}
	return st, nil
}

func (f *Fake) StopCueList(_ context.Context, session backend.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pb, ok := f.sessions[session.ID]
	if !ok {
		return backend.NewNotFound("playback session", session.ID)
	}
	pb.running = false
	return nil
}

func (f *Fake) GetPlaybackStatus(_ context.Context, session backend.Session) (*backend.PlaybackStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pb, ok := f.sessions[session.ID]
	if !ok {
		return nil, backend.NewNotFound("playback session", session.ID)
	}
	return f.statusLocked(pb)
}

func (f *Fake) GetCurrentActiveScene(ctx context.Context, session backend.Session) (*lighting.Scene, error) {
	st, err := f.GetPlaybackStatus(ctx, session)
	if err != nil {
		return nil, err
	}
	if st.CurrentCue == nil {
		return nil, backend.NewNotFound("scene", "")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if s := p.SceneByID(st.CurrentCue.SceneID); s != nil {
			copied := *s
			return &copied, nil
		}
	}
	return nil, backend.NewNotFound("scene", st.CurrentCue.SceneID)
}
