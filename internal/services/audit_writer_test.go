package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/events"
	"github.com/tooldeck/backend/internal/models"
)

type fakeInserter struct {
	entries []*models.AuditEntry
	err     error
}

func (f *fakeInserter) Insert(_ context.Context, e *models.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, e)
	return nil
}

type fakeAppender struct {
	appended []models.LegacyLogEntry
	caps     []int
	err      error
}

func (f *fakeAppender) AppendAuditLog(_ context.Context, _ uuid.UUID, entry models.LegacyLogEntry, cap int) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, entry)
	f.caps = append(f.caps, cap)
	return nil
}

type fakePublisher struct {
	published []events.Event
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, ev events.Event) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ev)
	return nil
}

func testActor() models.ActorSnapshot {
	return models.ActorSnapshot{ID: uuid.New(), Name: "Admin", Role: "admin"}
}

func TestRecordDualWrite(t *testing.T) {
	store := &fakeInserter{}
	mirror := &fakeAppender{}
	pub := &fakePublisher{}
	w := NewAuditWriter(store, map[string]LegacyAppender{models.TargetUser: mirror}, pub, 20, zap.NewNop())

	target := &models.User{ID: uuid.New(), Name: "Uma", Email: "uma@example.com", Role: "user"}
	entry, err := w.RecordRoleChange(context.Background(), testActor(), target, "user", "writer", "promotion", models.RequestMetadata{})
	if err != nil {
		t.Fatalf("RecordRoleChange: %v", err)
	}

	if len(store.entries) != 1 {
		t.Fatalf("centralized store got %d entries, want 1", len(store.entries))
	}
	if entry.ID == uuid.Nil {
		t.Error("entry should carry the store-assigned ID")
	}
	if len(entry.Changes) != 1 || entry.Changes[0].Field != "role" {
		t.Fatalf("changes = %+v, want single role change", entry.Changes)
	}
	if entry.Changes[0].OldValue != "user" || entry.Changes[0].NewValue != "writer" {
		t.Errorf("role change = %v -> %v, want user -> writer", entry.Changes[0].OldValue, entry.Changes[0].NewValue)
	}

	if len(mirror.appended) != 1 {
		t.Fatalf("mirror got %d entries, want 1", len(mirror.appended))
	}
	if mirror.appended[0].Action != models.ActionRoleChanged {
		t.Errorf("mirrored action = %q", mirror.appended[0].Action)
	}
	if mirror.caps[0] != 20 {
		t.Errorf("mirror cap = %d, want 20", mirror.caps[0])
	}

	if len(pub.published) != 1 || pub.published[0].Type != events.EventAuditRecorded {
		t.Errorf("published = %+v, want one audit event", pub.published)
	}
}

func TestRecordAuthoritativeFailureIsReturned(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &fakeInserter{err: storeErr}
	mirror := &fakeAppender{}
	w := NewAuditWriter(store, map[string]LegacyAppender{models.TargetUser: mirror}, nil, 20, zap.NewNop())

	target := &models.User{ID: uuid.New(), Name: "Uma"}
	_, err := w.RecordBlock(context.Background(), testActor(), target, "spam", models.RequestMetadata{})
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want the store failure", err)
	}
	if len(mirror.appended) != 0 {
		t.Error("mirror must not run after an authoritative failure")
	}
}

func TestRecordMirrorFailureIsSwallowed(t *testing.T) {
	store := &fakeInserter{}
	mirror := &fakeAppender{err: errors.New("row gone")}
	pub := &fakePublisher{err: errors.New("redis down")}
	w := NewAuditWriter(store, map[string]LegacyAppender{models.TargetUser: mirror}, pub, 20, zap.NewNop())

	target := &models.User{ID: uuid.New(), Name: "Uma"}
	entry, err := w.RecordUnblock(context.Background(), testActor(), target, "", models.RequestMetadata{})
	if err != nil {
		t.Fatalf("mirror and publish failures must not propagate, got %v", err)
	}
	if entry == nil || len(store.entries) != 1 {
		t.Fatal("centralized write should stand alone")
	}
}

func TestRecordNoMirrorForUnknownTargetType(t *testing.T) {
	store := &fakeInserter{}
	mirror := &fakeAppender{}
	w := NewAuditWriter(store, map[string]LegacyAppender{models.TargetUser: mirror}, nil, 20, zap.NewNop())

	_, err := w.RecordContentAction(context.Background(), models.CategoryToolManagement, models.ActionHidden,
		testActor(), uuid.New(), models.TargetTool, "Some Tool", nil, "", models.RequestMetadata{})
	if err != nil {
		t.Fatalf("RecordContentAction: %v", err)
	}
	if len(mirror.appended) != 0 {
		t.Error("user mirror must not receive tool entries")
	}
}

func TestRecordUserDeletionSnapshotsIdentity(t *testing.T) {
	store := &fakeInserter{}
	w := NewAuditWriter(store, nil, nil, 20, zap.NewNop())

	bio := "writes about tools"
	target := &models.User{
		ID: uuid.New(), Name: "Dana", Email: "dana@example.com",
		Role: "writer", Blocked: false, Bio: &bio,
	}

	entry, err := w.RecordUserDeletion(context.Background(), testActor(), target, "account closure", models.RequestMetadata{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("RecordUserDeletion: %v", err)
	}

	if entry.Details.Kind != models.DetailsDeletedUser {
		t.Fatalf("details kind = %q, want deleted user snapshot", entry.Details.Kind)
	}
	info := entry.Details.DeletedUser
	if info == nil {
		t.Fatal("deleted user info missing")
	}
	if info.Name != "Dana" || info.Email != "dana@example.com" || info.Role != "writer" {
		t.Errorf("snapshot = %+v, want full identity", info)
	}
	if info.Bio != bio {
		t.Errorf("snapshot bio = %q, want %q", info.Bio, bio)
	}
	if entry.Metadata.IPAddress != "10.0.0.1" {
		t.Errorf("metadata = %+v, want request context preserved", entry.Metadata)
	}
}

func TestRecordPostDeletionSnapshot(t *testing.T) {
	store := &fakeInserter{}
	w := NewAuditWriter(store, nil, nil, 20, zap.NewNop())

	post := &models.BlogPost{
		ID: uuid.New(), AuthorID: uuid.New(),
		Title: "Launch notes", Slug: "launch-notes", Status: models.PostStatusPublished,
	}
	entry, err := w.RecordPostDeletion(context.Background(), testActor(), post, "dmca", models.RequestMetadata{})
	if err != nil {
		t.Fatalf("RecordPostDeletion: %v", err)
	}
	if entry.Details.DeletedPost == nil || entry.Details.DeletedPost.Title != "Launch notes" {
		t.Errorf("details = %+v, want post snapshot", entry.Details)
	}
	if name := entry.Details.SnapshotName(); name != "Launch notes" {
		t.Errorf("SnapshotName = %q, want the post title", name)
	}
}
