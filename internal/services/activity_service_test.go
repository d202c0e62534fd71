package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/models"
)

type fakeAuditLister struct {
	entries []models.AuditEntry
	err     error
}

func (f *fakeAuditLister) ListSince(_ context.Context, category string, since time.Time) ([]models.AuditEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.AuditEntry
	for _, e := range f.entries {
		if e.CreatedAt.Before(since) {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeLegacySource struct {
	records []models.LegacyRecord
	err     error
}

func (f *fakeLegacySource) CollectAuditLogs(_ context.Context, since time.Time) ([]models.LegacyRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.LegacyRecord
	for _, r := range f.records {
		if r.Entry.Timestamp.Before(since) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeResolver struct {
	identities map[EntityRef]Identity
	err        error
}

func (f *fakeResolver) ResolveBatch(_ context.Context, _ []EntityRef) (map[EntityRef]Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identities, nil
}

type fakeStaffLister struct {
	staff []models.StaffMember
}

func (f *fakeStaffLister) ListStaff(_ context.Context) ([]models.StaffMember, error) {
	return f.staff, nil
}

func newTestService(audit *fakeAuditLister, legacy []LegacySource, resolver *fakeResolver, now time.Time) *ActivityService {
	svc := NewActivityService(audit, legacy, resolver, &fakeStaffLister{}, 5*time.Second, 30, 500, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func auditEntry(action string, actor models.ActorSnapshot, targetID uuid.UUID, targetName string, ts time.Time) models.AuditEntry {
	return models.AuditEntry{
		ID:          uuid.New(),
		Category:    models.CategoryUserManagement,
		Action:      action,
		PerformedBy: actor,
		TargetID:    targetID,
		TargetType:  models.TargetUser,
		TargetName:  targetName,
		CreatedAt:   ts,
	}
}

func TestQueryDedupDropsLegacyWithinTolerance(t *testing.T) {
	now := time.Now()
	actor := models.ActorSnapshot{ID: uuid.New(), Name: "Admin", Role: "admin"}
	targetID := uuid.New()

	central := auditEntry(models.ActionBlocked, actor, targetID, "Carol", now.Add(-time.Hour))

	duplicate := models.LegacyRecord{
		TargetID: targetID, TargetType: models.TargetUser, TargetName: "Carol",
		Entry: models.LegacyLogEntry{
			Action:      models.ActionBlocked,
			Category:    models.CategoryUserManagement,
			PerformedBy: actor,
			Timestamp:   central.CreatedAt.Add(2 * time.Second),
		},
	}
	distinct := models.LegacyRecord{
		TargetID: targetID, TargetType: models.TargetUser, TargetName: "Carol",
		Entry: models.LegacyLogEntry{
			Action:      models.ActionBlocked,
			Category:    models.CategoryUserManagement,
			PerformedBy: actor,
			Timestamp:   central.CreatedAt.Add(time.Minute),
		},
	}

	svc := newTestService(
		&fakeAuditLister{entries: []models.AuditEntry{central}},
		[]LegacySource{&fakeLegacySource{records: []models.LegacyRecord{duplicate, distinct}}},
		&fakeResolver{identities: map[EntityRef]Identity{}},
		now,
	)

	feed, err := svc.Query(context.Background(), ActivityFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(feed.Entries) != 2 {
		t.Fatalf("got %d entries, want 2 (central + distinct legacy)", len(feed.Entries))
	}

	sources := map[string]int{}
	for _, e := range feed.Entries {
		sources[e.Source]++
	}
	if sources[models.SourceAudit] != 1 || sources[models.SourceLegacy] != 1 {
		t.Errorf("sources = %v, want 1 audit + 1 legacy", sources)
	}
}

func TestQuerySortedDescending(t *testing.T) {
	now := time.Now()
	actor := models.ActorSnapshot{ID: uuid.New(), Name: "Admin", Role: "admin"}

	var entries []models.AuditEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, auditEntry(models.ActionBlocked, actor, uuid.New(), fmt.Sprintf("user-%d", i), now.Add(-time.Duration(i*7)*time.Minute)))
	}

	svc := newTestService(&fakeAuditLister{entries: entries}, nil, &fakeResolver{}, now)
	feed, err := svc.Query(context.Background(), ActivityFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	for i := 1; i < len(feed.Entries); i++ {
		if feed.Entries[i].Timestamp.After(feed.Entries[i-1].Timestamp) {
			t.Fatalf("entries out of order at %d: %v after %v", i, feed.Entries[i].Timestamp, feed.Entries[i-1].Timestamp)
		}
	}
}

func TestQueryWindowBoundary(t *testing.T) {
	now := time.Now()
	actor := models.ActorSnapshot{ID: uuid.New(), Name: "Admin", Role: "admin"}

	atBoundary := auditEntry(models.ActionBlocked, actor, uuid.New(), "edge", now.AddDate(0, 0, -30))
	outside := auditEntry(models.ActionBlocked, actor, uuid.New(), "old", now.AddDate(0, 0, -31))

	svc := newTestService(&fakeAuditLister{entries: []models.AuditEntry{atBoundary, outside}}, nil, &fakeResolver{}, now)

	feed, err := svc.Query(context.Background(), ActivityFilter{Window: "30"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(feed.Entries) != 1 {
		t.Fatalf("got %d entries, want 1 (boundary inclusive, 31d excluded)", len(feed.Entries))
	}
	if feed.Entries[0].Target.Name != "edge" {
		t.Errorf("wrong entry survived the window: %q", feed.Entries[0].Target.Name)
	}

	// "all" lifts the bound entirely.
	feed, err = svc.Query(context.Background(), ActivityFilter{Window: "all"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(feed.Entries) != 2 {
		t.Fatalf("window=all: got %d entries, want 2", len(feed.Entries))
	}

	// Malformed window falls back to the default.
	feed, err = svc.Query(context.Background(), ActivityFilter{Window: "soon"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(feed.Entries) != 1 {
		t.Fatalf("malformed window: got %d entries, want 1", len(feed.Entries))
	}
}

func TestQueryDeletedTargetFallsBackToSnapshot(t *testing.T) {
	now := time.Now()
	actor := models.ActorSnapshot{ID: uuid.New(), Name: "Admin", Role: "admin"}
	danaID := uuid.New()

	entry := models.AuditEntry{
		ID:          uuid.New(),
		Category:    models.CategoryUserManagement,
		Action:      models.ActionAccountDeleted,
		PerformedBy: actor,
		TargetID:    danaID,
		TargetType:  models.TargetUser,
		TargetName:  "Dana",
		Details: models.DeletedUserDetails(models.DeletedUserInfo{
			ID: danaID, Name: "Dana", Email: "dana@example.com", Role: "writer",
		}),
		CreatedAt: now.Add(-time.Hour),
	}

	// Resolver knows nothing: Dana's row is gone.
	svc := newTestService(&fakeAuditLister{entries: []models.AuditEntry{entry}}, nil, &fakeResolver{identities: map[EntityRef]Identity{}}, now)

	feed, err := svc.Query(context.Background(), ActivityFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(feed.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(feed.Entries))
	}

	v := feed.Entries[0]
	if v.Target.Exists {
		t.Error("target should not resolve")
	}
	if v.Target.Name != "Dana" {
		t.Errorf("target name = %q, want snapshot %q", v.Target.Name, "Dana")
	}
	if v.Summary.DeletedName != "Dana" || v.Summary.DeletedEmail != "dana@example.com" {
		t.Errorf("summary = %+v, want preserved identity snapshot", v.Summary)
	}
	if v.OriginalNames.TargetName != "Dana" {
		t.Errorf("original target name = %q, want Dana", v.OriginalNames.TargetName)
	}
}

func TestQueryCurrentIdentityWinsWhenResolvable(t *testing.T) {
	now := time.Now()
	actor := models.ActorSnapshot{ID: uuid.New(), Name: "Old Admin Name", Role: "admin"}
	targetID := uuid.New()

	entry := auditEntry(models.ActionRoleChanged, actor, targetID, "Old Target Name", now.Add(-time.Hour))
	entry.Changes = []models.Change{{Field: "role", OldValue: "user", NewValue: "writer"}}

	svc := newTestService(&fakeAuditLister{entries: []models.AuditEntry{entry}}, nil, &fakeResolver{identities: map[EntityRef]Identity{
		{Type: models.TargetUser, ID: actor.ID}:  {Name: "New Admin Name", Role: "admin"},
		{Type: models.TargetUser, ID: targetID}:  {Name: "New Target Name", Email: "t@example.com", Role: "writer"},
	}}, now)

	feed, err := svc.Query(context.Background(), ActivityFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	v := feed.Entries[0]
	if v.Performer.Name != "New Admin Name" || !v.Performer.Exists {
		t.Errorf("performer = %+v, want current name", v.Performer)
	}
	if v.Target.Name != "New Target Name" {
		t.Errorf("target = %+v, want current name", v.Target)
	}
	if v.OriginalNames.PerformerName != "Old Admin Name" || v.OriginalNames.TargetName != "Old Target Name" {
		t.Errorf("original names = %+v, want write-time snapshots", v.OriginalNames)
	}
}

func TestQueryRoleChangeScenario(t *testing.T) {
	now := time.Now()
	actor := models.ActorSnapshot{ID: uuid.New(), Name: "Alice", Role: "admin"}
	targetID := uuid.New()

	entry := auditEntry(models.ActionRoleChanged, actor, targetID, "Uma", now.Add(-time.Minute))
	entry.Changes = []models.Change{{Field: "role", OldValue: "user", NewValue: "writer"}}
	entry.Reason = "promotion"

	svc := newTestService(&fakeAuditLister{entries: []models.AuditEntry{entry}}, nil, &fakeResolver{}, now)
	feed, err := svc.Query(context.Background(), ActivityFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	v := feed.Entries[0]
	if len(v.Changes) != 1 || v.Changes[0].Field != "role" {
		t.Fatalf("changes = %+v, want single role change", v.Changes)
	}
	if v.Summary.FromRole != "user" || v.Summary.ToRole != "writer" {
		t.Errorf("summary roles = %q -> %q, want user -> writer", v.Summary.FromRole, v.Summary.ToRole)
	}
	if !strings.Contains(v.Summary.Description, "user") || !strings.Contains(v.Summary.Description, "writer") {
		t.Errorf("description %q should mention both roles", v.Summary.Description)
	}
	if v.Reason != "promotion" {
		t.Errorf("reason = %q, want promotion", v.Reason)
	}
}

func TestQueryFilters(t *testing.T) {
	now := time.Now()
	alice := models.ActorSnapshot{ID: uuid.New(), Name: "Alice", Role: "admin"}
	bob := models.ActorSnapshot{ID: uuid.New(), Name: "Bob", Role: "moderator"}

	roleChange := auditEntry(models.ActionRoleChanged, alice, uuid.New(), "Uma", now.Add(-time.Minute))
	roleChange.Changes = []models.Change{{Field: "role", OldValue: "user", NewValue: "writer"}}
	blocked := auditEntry(models.ActionBlocked, bob, uuid.New(), "Victor", now.Add(-2*time.Minute))
	deleted := auditEntry(models.ActionAccountDeleted, alice, uuid.New(), "Wanda", now.Add(-3*time.Minute))

	entries := []models.AuditEntry{roleChange, blocked, deleted}
	svc := newTestService(&fakeAuditLister{entries: entries}, nil, &fakeResolver{}, now)

	t.Run("action exact match", func(t *testing.T) {
		feed, err := svc.Query(context.Background(), ActivityFilter{Action: models.ActionRoleChanged})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(feed.Entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(feed.Entries))
		}
		for _, e := range feed.Entries {
			if e.Action != models.ActionRoleChanged {
				t.Errorf("entry action = %q, want role_changed only", e.Action)
			}
		}
	})

	t.Run("unknown action means no filter", func(t *testing.T) {
		feed, err := svc.Query(context.Background(), ActivityFilter{Action: "definitely_not_an_action"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(feed.Entries) != 3 {
			t.Fatalf("got %d entries, want all 3", len(feed.Entries))
		}
	})

	t.Run("performer filter", func(t *testing.T) {
		feed, err := svc.Query(context.Background(), ActivityFilter{PerformerID: bob.ID.String()})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(feed.Entries) != 1 || feed.Entries[0].Performer.ID != bob.ID {
			t.Fatalf("performer filter returned %d entries", len(feed.Entries))
		}
	})

	t.Run("before cursor pages past newer entries", func(t *testing.T) {
		feed, err := svc.Query(context.Background(), ActivityFilter{Before: roleChange.CreatedAt.Format(time.RFC3339)})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(feed.Entries) != 2 {
			t.Fatalf("got %d entries, want 2 older than the cursor", len(feed.Entries))
		}
		for _, e := range feed.Entries {
			if e.Action == models.ActionRoleChanged {
				t.Error("cursor entry itself must be excluded")
			}
		}
	})

	t.Run("malformed cursor is ignored", func(t *testing.T) {
		feed, err := svc.Query(context.Background(), ActivityFilter{Before: "yesterday"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(feed.Entries) != 3 {
			t.Fatalf("got %d entries, want all 3", len(feed.Entries))
		}
	})

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		feed, err := svc.Query(context.Background(), ActivityFilter{Search: "wAnDa"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(feed.Entries) != 1 || feed.Entries[0].Target.Name != "Wanda" {
			t.Fatalf("search returned %d entries", len(feed.Entries))
		}
	})
}

func TestQueryStatsCoverFilteredNotTruncated(t *testing.T) {
	now := time.Now()
	actor := models.ActorSnapshot{ID: uuid.New(), Name: "Admin", Role: "admin"}

	var entries []models.AuditEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, auditEntry(models.ActionBlocked, actor, uuid.New(), fmt.Sprintf("u%d", i), now.Add(-time.Duration(i)*time.Minute)))
	}

	svc := newTestService(&fakeAuditLister{entries: entries}, nil, &fakeResolver{}, now)
	svc.maxResults = 3

	feed, err := svc.Query(context.Background(), ActivityFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(feed.Entries) != 3 {
		t.Fatalf("got %d entries, want truncation to 3", len(feed.Entries))
	}
	if feed.Stats.Total != 10 {
		t.Errorf("stats.Total = %d, want 10 (untruncated population)", feed.Stats.Total)
	}
	if feed.Stats.ByAction[models.ActionBlocked] != 10 {
		t.Errorf("stats.ByAction = %v, want 10 blocked", feed.Stats.ByAction)
	}
	if feed.Stats.ByPerformer[actor.ID.String()] != 10 {
		t.Errorf("stats.ByPerformer = %v, want 10 for actor", feed.Stats.ByPerformer)
	}
}

func TestQueryLegacyReadFailureIsNonFatal(t *testing.T) {
	now := time.Now()
	actor := models.ActorSnapshot{ID: uuid.New(), Name: "Admin", Role: "admin"}
	entry := auditEntry(models.ActionBlocked, actor, uuid.New(), "Carol", now.Add(-time.Hour))

	svc := newTestService(
		&fakeAuditLister{entries: []models.AuditEntry{entry}},
		[]LegacySource{&fakeLegacySource{err: fmt.Errorf("embedded store down")}},
		&fakeResolver{},
		now,
	)

	feed, err := svc.Query(context.Background(), ActivityFilter{})
	if err != nil {
		t.Fatalf("Query should survive legacy failure: %v", err)
	}
	if len(feed.Entries) != 1 {
		t.Fatalf("got %d entries, want centralized-only result", len(feed.Entries))
	}
}

func TestQueryResolverFailureDegradesToSnapshots(t *testing.T) {
	now := time.Now()
	actor := models.ActorSnapshot{ID: uuid.New(), Name: "Admin", Role: "admin"}
	entry := auditEntry(models.ActionBlocked, actor, uuid.New(), "Carol", now.Add(-time.Hour))

	svc := newTestService(
		&fakeAuditLister{entries: []models.AuditEntry{entry}},
		nil,
		&fakeResolver{err: fmt.Errorf("lookup down")},
		now,
	)

	feed, err := svc.Query(context.Background(), ActivityFilter{})
	if err != nil {
		t.Fatalf("Query should survive resolver failure: %v", err)
	}
	v := feed.Entries[0]
	if v.Target.Name != "Carol" || v.Performer.Name != "Admin" {
		t.Errorf("expected snapshot identities, got target=%q performer=%q", v.Target.Name, v.Performer.Name)
	}
}
