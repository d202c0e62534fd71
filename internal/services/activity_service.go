package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/models"
)

// AuditLister reads the centralized store.
type AuditLister interface {
	ListSince(ctx context.Context, category string, since time.Time) ([]models.AuditEntry, error)
}

// LegacySource reads one entity store's embedded logs. Deleted entities have
// no rows to read, which is expected, not an error.
type LegacySource interface {
	CollectAuditLogs(ctx context.Context, since time.Time) ([]models.LegacyRecord, error)
}

// StaffLister supplies the performer filter options for the admin console.
type StaffLister interface {
	ListStaff(ctx context.Context) ([]models.StaffMember, error)
}

// ActivityFilter is the history query input. Every field is optional;
// unrecognized values fall back to "no filter".
type ActivityFilter struct {
	Search      string
	Action      string
	PerformerID string
	Window      string // "all" or a day count; empty means the default window
	Category    string
	Before      string // RFC3339 pagination cursor, entries strictly older
}

// ActivityService reconciles the centralized audit store with the embedded
// legacy logs into a single deduplicated, filtered, bounded feed.
type ActivityService struct {
	audit          AuditLister
	legacy         []LegacySource
	resolver       IdentityResolver
	staff          StaffLister
	dedupTolerance time.Duration
	defaultWindow  int
	maxResults     int
	log            *zap.Logger
	now            func() time.Time
}

func NewActivityService(audit AuditLister, legacy []LegacySource, resolver IdentityResolver, staff StaffLister, dedupTolerance time.Duration, defaultWindowDays, maxResults int, log *zap.Logger) *ActivityService {
	return &ActivityService{
		audit:          audit,
		legacy:         legacy,
		resolver:       resolver,
		staff:          staff,
		dedupTolerance: dedupTolerance,
		defaultWindow:  defaultWindowDays,
		maxResults:     maxResults,
		log:            log,
		now:            time.Now,
	}
}

func (s *ActivityService) Query(ctx context.Context, filter ActivityFilter) (*models.ActivityFeed, error) {
	since := s.windowStart(filter.Window)

	entries, err := s.audit.ListSince(ctx, filter.Category, since)
	if err != nil {
		return nil, fmt.Errorf("read audit store: %w", err)
	}

	// Legacy reads are non-fatal: centralized results alone are still a
	// complete deletion-surviving history.
	var legacyRecords []models.LegacyRecord
	for _, src := range s.legacy {
		records, err := src.CollectAuditLogs(ctx, since)
		if err != nil {
			s.log.Warn("legacy audit read failed", zap.Error(err))
			continue
		}
		legacyRecords = append(legacyRecords, records...)
	}

	identities := s.resolveAll(ctx, entries, legacyRecords)

	views := make([]models.ActivityView, 0, len(entries)+len(legacyRecords))
	dedupIndex := make(map[string][]time.Time)
	for _, e := range entries {
		views = append(views, s.buildAuditView(e, identities))
		key := dedupKey(e.TargetID, e.Action)
		dedupIndex[key] = append(dedupIndex[key], e.CreatedAt)
	}

	// A legacy record is a duplicate when a centralized entry exists for the
	// same target and action within the tolerance. The two halves of one
	// logical action are written moments apart, never atomically.
	for _, rec := range legacyRecords {
		if s.isDuplicate(dedupIndex[dedupKey(rec.TargetID, rec.Entry.Action)], rec.Entry.Timestamp) {
			continue
		}
		views = append(views, s.buildLegacyView(rec, identities))
	}

	views = applyFilter(views, filter)

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Timestamp.After(views[j].Timestamp)
	})

	// Stats cover the whole filtered population, not just the page shown.
	stats := computeStats(views)
	if len(views) > s.maxResults {
		views = views[:s.maxResults]
	}

	staff, err := s.staff.ListStaff(ctx)
	if err != nil {
		s.log.Warn("staff list failed", zap.Error(err))
		staff = nil
	}

	return &models.ActivityFeed{Entries: views, Staff: staff, Stats: stats}, nil
}

// windowStart maps the window filter to an inclusive lower bound. "all"
// means unbounded; malformed values get the default window.
func (s *ActivityService) windowStart(window string) time.Time {
	if window == "all" {
		return time.Time{}
	}
	days := s.defaultWindow
	if window != "" {
		if v, err := strconv.Atoi(window); err == nil && v > 0 {
			days = v
		}
	}
	return s.now().AddDate(0, 0, -days)
}

// resolveAll batch-resolves every distinct actor/target referenced by the
// result set in one pass. A resolver failure degrades every entry to its
// snapshot identity instead of aborting the query.
func (s *ActivityService) resolveAll(ctx context.Context, entries []models.AuditEntry, legacy []models.LegacyRecord) map[EntityRef]Identity {
	var refs []EntityRef
	for _, e := range entries {
		refs = append(refs,
			EntityRef{Type: models.TargetUser, ID: e.PerformedBy.ID},
			EntityRef{Type: e.TargetType, ID: e.TargetID},
		)
	}
	for _, rec := range legacy {
		refs = append(refs, EntityRef{Type: models.TargetUser, ID: rec.Entry.PerformedBy.ID})
	}

	identities, err := s.resolver.ResolveBatch(ctx, refs)
	if err != nil {
		s.log.Warn("identity resolution failed, falling back to snapshots", zap.Error(err))
		return map[EntityRef]Identity{}
	}
	return identities
}

func (s *ActivityService) buildAuditView(e models.AuditEntry, identities map[EntityRef]Identity) models.ActivityView {
	performer := resolveIdentity(identities, models.TargetUser, e.PerformedBy.ID, e.PerformedBy.Name, "", e.PerformedBy.Role)

	targetFallback := e.TargetName
	if targetFallback == "" {
		targetFallback = e.Details.SnapshotName()
	}
	target := resolveIdentity(identities, e.TargetType, e.TargetID, targetFallback, "", "")

	return models.ActivityView{
		ID:         e.ID.String(),
		Source:     models.SourceAudit,
		Category:   e.Category,
		Action:     e.Action,
		Performer:  performer,
		Target:     target,
		TargetType: e.TargetType,
		OriginalNames: models.OriginalNames{
			PerformerName: e.PerformedBy.Name,
			TargetName:    e.TargetName,
		},
		Changes:   e.Changes,
		Reason:    e.Reason,
		Summary:   renderSummary(e.Action, target.Name, e.Changes, e.Details),
		Metadata:  e.Metadata,
		Timestamp: e.CreatedAt,
	}
}

func (s *ActivityService) buildLegacyView(rec models.LegacyRecord, identities map[EntityRef]Identity) models.ActivityView {
	e := rec.Entry
	performer := resolveIdentity(identities, models.TargetUser, e.PerformedBy.ID, e.PerformedBy.Name, "", e.PerformedBy.Role)

	// The owning entity is live by construction; legacy logs die with it.
	target := models.IdentityView{ID: rec.TargetID, Name: rec.TargetName, Exists: true}

	return models.ActivityView{
		ID:         fmt.Sprintf("legacy:%s:%d", rec.TargetID, e.Timestamp.UnixNano()),
		Source:     models.SourceLegacy,
		Category:   e.Category,
		Action:     e.Action,
		Performer:  performer,
		Target:     target,
		TargetType: rec.TargetType,
		OriginalNames: models.OriginalNames{
			PerformerName: e.PerformedBy.Name,
			TargetName:    rec.TargetName,
		},
		Changes:   e.Changes,
		Reason:    e.Reason,
		Summary:   renderSummary(e.Action, rec.TargetName, e.Changes, models.Details{}),
		Metadata:  e.Metadata,
		Timestamp: e.Timestamp,
	}
}

func (s *ActivityService) isDuplicate(centralized []time.Time, ts time.Time) bool {
	for _, cts := range centralized {
		delta := cts.Sub(ts)
		if delta < 0 {
			delta = -delta
		}
		if delta <= s.dedupTolerance {
			return true
		}
	}
	return false
}

func dedupKey(targetID uuid.UUID, action string) string {
	return targetID.String() + "|" + action
}

// resolveIdentity prefers the live lookup and falls back to the write-time
// snapshot. The fallback is mandatory: it is what keeps history readable
// after the entity is deleted.
func resolveIdentity(identities map[EntityRef]Identity, entityType string, id uuid.UUID, snapshotName, snapshotEmail, snapshotRole string) models.IdentityView {
	if ident, ok := identities[EntityRef{Type: entityType, ID: id}]; ok {
		return models.IdentityView{ID: id, Name: ident.Name, Email: ident.Email, Role: ident.Role, Exists: true}
	}
	return models.IdentityView{ID: id, Name: snapshotName, Email: snapshotEmail, Role: snapshotRole, Exists: false}
}

func applyFilter(views []models.ActivityView, filter ActivityFilter) []models.ActivityView {
	action := filter.Action
	if action != "" && !models.KnownActions[action] {
		action = "" // unrecognized action means no filter
	}

	var performerID uuid.UUID
	if filter.PerformerID != "" {
		if id, err := uuid.Parse(filter.PerformerID); err == nil {
			performerID = id
		}
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var before time.Time
	if filter.Before != "" {
		if t, err := time.Parse(time.RFC3339, filter.Before); err == nil {
			before = t
		}
	}

	out := views[:0]
	for _, v := range views {
		if action != "" && v.Action != action {
			continue
		}
		if !before.IsZero() && !v.Timestamp.Before(before) {
			continue
		}
		if performerID != uuid.Nil && v.Performer.ID != performerID {
			continue
		}
		if search != "" && !matchesSearch(v, search) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matchesSearch(v models.ActivityView, search string) bool {
	for _, field := range []string{
		v.Target.Name,
		v.Target.Email,
		v.OriginalNames.TargetName,
		v.Performer.Name,
		v.OriginalNames.PerformerName,
		v.Reason,
		v.Summary.Description,
	} {
		if field != "" && strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func computeStats(views []models.ActivityView) models.ActivityStats {
	stats := models.ActivityStats{
		Total:       len(views),
		ByAction:    make(map[string]int),
		ByPerformer: make(map[string]int),
	}
	for _, v := range views {
		stats.ByAction[v.Action]++
		stats.ByPerformer[v.Performer.ID.String()]++
	}
	return stats
}
