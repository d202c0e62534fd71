package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tooldeck/backend/internal/models"
)

// renderSummary derives the display block for one action. Each branch reads
// only the fields its action is defined to carry.
func renderSummary(action, targetName string, changes []models.Change, details models.Details) models.ActionSummary {
	switch action {
	case models.ActionRoleChanged:
		from, to := "", ""
		for _, c := range changes {
			if c.Field == "role" {
				from = stringifyValue(c.OldValue)
				to = stringifyValue(c.NewValue)
				break
			}
		}
		return models.ActionSummary{
			Description: fmt.Sprintf("changed role of %s from %s to %s", targetName, from, to),
			FromRole:    from,
			ToRole:      to,
		}

	case models.ActionBlocked:
		return models.ActionSummary{
			Description:    fmt.Sprintf("blocked %s", targetName),
			PreviousStatus: "active",
			NewStatus:      "blocked",
		}

	case models.ActionUnblocked:
		return models.ActionSummary{
			Description:    fmt.Sprintf("unblocked %s", targetName),
			PreviousStatus: "blocked",
			NewStatus:      "active",
		}

	case models.ActionProfileUpdated, models.ActionDataModified, models.ActionUpdated:
		fields := make([]string, 0, len(changes))
		for _, c := range changes {
			fields = append(fields, c.Field)
		}
		return models.ActionSummary{
			Description: fmt.Sprintf("updated %d field(s) of %s: %s", len(fields), targetName, strings.Join(fields, ", ")),
			FieldCount:  len(fields),
			Fields:      fields,
		}

	case models.ActionAccountDeleted:
		summary := models.ActionSummary{
			Description: fmt.Sprintf("deleted account %s", targetName),
		}
		if details.Kind == models.DetailsDeletedUser && details.DeletedUser != nil {
			summary.DeletedName = details.DeletedUser.Name
			summary.DeletedEmail = details.DeletedUser.Email
			summary.DeletedRole = details.DeletedUser.Role
			summary.Description = fmt.Sprintf("deleted account %s (%s)", details.DeletedUser.Name, details.DeletedUser.Email)
		}
		return summary

	case models.ActionAccountCreated:
		return models.ActionSummary{
			Description: fmt.Sprintf("created account %s", targetName),
		}

	case models.ActionDeleted:
		summary := models.ActionSummary{
			Description: fmt.Sprintf("deleted %s", targetName),
		}
		if name := details.SnapshotName(); name != "" {
			summary.DeletedName = name
			summary.Description = fmt.Sprintf("deleted %s", name)
		}
		return summary

	case models.ActionCreated:
		return models.ActionSummary{Description: fmt.Sprintf("created %s", targetName)}
	case models.ActionPublished:
		return models.ActionSummary{Description: fmt.Sprintf("published %s", targetName)}
	case models.ActionUnpublished:
		return models.ActionSummary{Description: fmt.Sprintf("unpublished %s", targetName)}
	case models.ActionHidden:
		return models.ActionSummary{Description: fmt.Sprintf("hid %s", targetName)}
	case models.ActionUnhidden:
		return models.ActionSummary{Description: fmt.Sprintf("unhid %s", targetName)}

	default:
		return models.ActionSummary{Description: fmt.Sprintf("%s on %s", action, targetName)}
	}
}

// stringifyValue renders a change value for display. Scalars print as-is;
// objects and arrays collapse to compact JSON.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool, int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
