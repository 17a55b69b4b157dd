package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"bandstand/internal/domain"
	"bandstand/internal/domain/models"
	"bandstand/internal/domain/repositories"
	"bandstand/internal/domain/services"

	"github.com/google/uuid"
)

// In-memory repository fakes backing the service tests. They mirror the
// postgres implementations' contracts: scoped lookups return NotFound,
// duplicate version numbers return Conflict, and list reads come back
// ordered.

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSetlistRepo struct {
	mu       sync.Mutex
	setlists map[string]models.Setlist
	deleted  map[string]bool
}

func newFakeSetlistRepo() *fakeSetlistRepo {
	return &fakeSetlistRepo{
		setlists: make(map[string]models.Setlist),
		deleted:  make(map[string]bool),
	}
}

func (r *fakeSetlistRepo) Create(ctx context.Context, setlist *models.Setlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	setlist.ID = uuid.NewString()
	setlist.CreatedAt = time.Now()
	setlist.UpdatedAt = setlist.CreatedAt
	r.setlists[setlist.ID] = *setlist
	return nil
}

func (r *fakeSetlistRepo) GetByID(ctx context.Context, id string) (*models.Setlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.setlists[id]
	if !ok || r.deleted[id] {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("setlist %s not found", id)}
	}
	copied := s
	return &copied, nil
}

func (r *fakeSetlistRepo) ListForUser(ctx context.Context, userID string) ([]models.Setlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Setlist
	for id, s := range r.setlists {
		if r.deleted[id] {
			continue
		}
		if s.CreatedBy == userID || s.IsPublic {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSetlistRepo) Update(ctx context.Context, setlist *models.Setlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.setlists[setlist.ID]; !ok || r.deleted[setlist.ID] {
		return &domain.NotFoundError{Message: "setlist not found"}
	}
	setlist.UpdatedAt = time.Now()
	r.setlists[setlist.ID] = *setlist
	return nil
}

func (r *fakeSetlistRepo) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.setlists[id]; !ok || r.deleted[id] {
		return &domain.NotFoundError{Message: "setlist not found"}
	}
	r.deleted[id] = true
	return nil
}

type fakeMembershipRepo struct {
	members map[string]map[string]bool // bandID -> userID -> member
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{members: make(map[string]map[string]bool)}
}

func (r *fakeMembershipRepo) add(bandID, userID string) {
	if r.members[bandID] == nil {
		r.members[bandID] = make(map[string]bool)
	}
	r.members[bandID][userID] = true
}

func (r *fakeMembershipRepo) IsMember(ctx context.Context, bandID, userID string) (bool, error) {
	return r.members[bandID][userID], nil
}

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[string]models.SetlistItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string]models.SetlistItem)}
}

func (r *fakeItemRepo) Create(ctx context.Context, item *models.SetlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	r.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, setlistID, itemID string) (*models.SetlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok || it.SetlistID != setlistID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("item %s not found", itemID)}
	}
	copied := it
	return &copied, nil
}

func (r *fakeItemRepo) ListBySetlist(ctx context.Context, setlistID string) ([]models.SetlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SetlistItem
	for _, it := range r.items {
		if it.SetlistID == setlistID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SetNumber != out[j].SetNumber {
			return out[i].SetNumber < out[j].SetNumber
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r *fakeItemRepo) Update(ctx context.Context, item *models.SetlistItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[item.ID]
	if !ok || stored.SetlistID != item.SetlistID {
		return &domain.NotFoundError{Message: "item not found"}
	}
	item.Position = stored.Position
	item.UpdatedAt = time.Now()
	r.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) Delete(ctx context.Context, setlistID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[itemID]
	if !ok || it.SetlistID != setlistID {
		return &domain.NotFoundError{Message: "item not found"}
	}
	delete(r.items, itemID)
	return nil
}

func (r *fakeItemRepo) DeleteAllBySetlist(ctx context.Context, setlistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, it := range r.items {
		if it.SetlistID == setlistID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *fakeItemRepo) MaxPosition(ctx context.Context, setlistID string, setNumber int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max, found := 0, false
	for _, it := range r.items {
		if it.SetlistID != setlistID || it.SetNumber != setNumber {
			continue
		}
		if !found || it.Position > max {
			max = it.Position
			found = true
		}
	}
	return max, found, nil
}

func (r *fakeItemRepo) ShiftPositions(ctx context.Context, setlistID string, setNumber, fromPosition int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, it := range r.items {
		if it.SetlistID == setlistID && it.SetNumber == setNumber && it.Position >= fromPosition {
			it.Position++
			r.items[id] = it
		}
	}
	return nil
}

func (r *fakeItemRepo) UpdatePositions(ctx context.Context, setlistID string, assignments []models.PositionAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range assignments {
		it, ok := r.items[a.ItemID]
		if !ok || it.SetlistID != setlistID {
			return &domain.NotFoundError{Message: fmt.Sprintf("item %s not found", a.ItemID)}
		}
		it.Position = a.Position
		r.items[a.ItemID] = it
	}
	// Mimic the deferred uniqueness check at commit.
	seen := make(map[string]bool)
	for _, it := range r.items {
		if it.SetlistID != setlistID {
			continue
		}
		key := fmt.Sprintf("%d/%d", it.SetNumber, it.Position)
		if seen[key] {
			return &domain.ConflictError{Message: "duplicate position " + key, ResourceType: "item"}
		}
		seen[key] = true
	}
	return nil
}

type fakeSongRepo struct {
	songs map[string]models.Song
}

func newFakeSongRepo(songs ...models.Song) *fakeSongRepo {
	r := &fakeSongRepo{songs: make(map[string]models.Song)}
	for _, s := range songs {
		r.songs[s.ID] = s
	}
	return r
}

func (r *fakeSongRepo) Exists(ctx context.Context, songID string) (bool, error) {
	_, ok := r.songs[songID]
	return ok, nil
}

func (r *fakeSongRepo) GetByIDs(ctx context.Context, songIDs []string) (map[string]models.Song, error) {
	out := make(map[string]models.Song)
	for _, id := range songIDs {
		if s, ok := r.songs[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeVersionRepo struct {
	mu       sync.Mutex
	versions map[string]models.SetlistVersion

	// beforeCreate runs just before each Create, letting a test inject a
	// competing writer between number selection and insert.
	beforeCreate func()
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string]models.SetlistVersion)}
}

func (r *fakeVersionRepo) Create(ctx context.Context, version *models.SetlistVersion) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.SetlistID == version.SetlistID && v.VersionNumber == version.VersionNumber {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version %d already exists", version.VersionNumber),
				ResourceType: "version",
			}
		}
	}
	version.ID = uuid.NewString()
	version.CreatedAt = time.Now()
	r.versions[version.ID] = *version
	return nil
}

func (r *fakeVersionRepo) ListBySetlist(ctx context.Context, setlistID string) ([]models.SetlistVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SetlistVersion
	for _, v := range r.versions {
		if v.SetlistID == setlistID {
			v.Snapshot = nil
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber < out[j].VersionNumber })
	return out, nil
}

func (r *fakeVersionRepo) GetByID(ctx context.Context, setlistID, versionID string) (*models.SetlistVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.versions[versionID]
	if !ok || v.SetlistID != setlistID {
		return nil, &domain.NotFoundError{Message: "version not found"}
	}
	copied := v
	return &copied, nil
}

func (r *fakeVersionRepo) MaxVersionNumber(ctx context.Context, setlistID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, v := range r.versions {
		if v.SetlistID == setlistID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (r *fakeVersionRepo) DeleteAllBySetlist(ctx context.Context, setlistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.versions {
		if v.SetlistID == setlistID {
			delete(r.versions, id)
		}
	}
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]models.Comment
	seq      int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]models.Comment)}
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = uuid.NewString()
	r.seq++
	comment.CreatedAt = time.Unix(int64(r.seq), 0)
	comment.UpdatedAt = comment.CreatedAt
	r.comments[comment.ID] = *comment
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, setlistID, commentID string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok || c.SetlistID != setlistID {
		return nil, &domain.NotFoundError{Message: "comment not found"}
	}
	copied := c
	return &copied, nil
}

func (r *fakeCommentRepo) ListBySetlist(ctx context.Context, setlistID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, c := range r.comments {
		if c.SetlistID == setlistID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, setlistID, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok || c.SetlistID != setlistID {
		return &domain.NotFoundError{Message: "comment not found"}
	}
	delete(r.comments, commentID)
	for id, reply := range r.comments {
		if reply.ParentCommentID != nil && *reply.ParentCommentID == commentID {
			delete(r.comments, id)
		}
	}
	return nil
}

func (r *fakeCommentRepo) DeleteAllBySetlist(ctx context.Context, setlistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.comments {
		if c.SetlistID == setlistID {
			delete(r.comments, id)
		}
	}
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// broadcastCall records one emitted event for assertion.
type broadcastCall struct {
	Event   string
	Target  string
	Payload interface{}
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (b *recordingBroadcaster) record(event, target string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{Event: event, Target: target, Payload: payload})
}

func (b *recordingBroadcaster) SetlistUpdated(setlistID string, payload interface{}) {
	b.record("setlist-updated", setlistID, payload)
}

func (b *recordingBroadcaster) SetlistItemUpdated(setlistID string, payload interface{}) {
	b.record("setlist-item-updated", setlistID, payload)
}

func (b *recordingBroadcaster) SetlistReordered(setlistID string, payload interface{}) {
	b.record("setlist-reordered", setlistID, payload)
}

func (b *recordingBroadcaster) NewComment(setlistID string, payload interface{}) {
	b.record("new-comment", setlistID, payload)
}

func (b *recordingBroadcaster) Notify(userID string, payload interface{}) {
	b.record("notification", userID, payload)
}

func (b *recordingBroadcaster) events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.calls))
	for _, c := range b.calls {
		out = append(out, c.Event)
	}
	return out
}

// env bundles the fakes behind fully wired services.
type env struct {
	setlists *fakeSetlistRepo
	items    *fakeItemRepo
	songs    *fakeSongRepo
	versions *fakeVersionRepo
	comments *fakeCommentRepo
	members  *fakeMembershipRepo
	events   *recordingBroadcaster

	setlistSvc  services.SetlistService
	orderingSvc services.OrderingService
	versionSvc  services.VersionService
	commentSvc  services.CommentService
}

func newEnv(songs ...models.Song) *env {
	e := &env{
		setlists: newFakeSetlistRepo(),
		items:    newFakeItemRepo(),
		songs:    newFakeSongRepo(songs...),
		versions: newFakeVersionRepo(),
		comments: newFakeCommentRepo(),
		members:  newFakeMembershipRepo(),
		events:   &recordingBroadcaster{},
	}
	authorizer := NewBandAwareAuthorizer(e.members)
	tx := fakeTxManager{}
	e.setlistSvc = NewSetlistService(e.setlists, e.items, e.versions, e.comments, e.songs, e.members, tx, authorizer, e.events, testLogger)
	e.orderingSvc = NewOrderingService(e.setlists, e.items, e.songs, tx, authorizer, e.events, testLogger)
	e.versionSvc = NewVersionService(e.setlists, e.items, e.versions, tx, authorizer, e.events, testLogger)
	e.commentSvc = NewCommentService(e.setlists, e.comments, authorizer, e.events, testLogger)
	return e
}

func (e *env) mustCreateSetlist(ctx context.Context, userID, title string) *models.Setlist {
	setlist, err := e.setlistSvc.CreateSetlist(ctx, userID, &services.CreateSetlistRequest{Title: title})
	if err != nil {
		panic(err)
	}
	return setlist
}

func (e *env) mustAddSong(id, title string) {
	e.songs.songs[id] = models.Song{ID: id, Title: title}
}
