package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestDetailsSnapshotName(t *testing.T) {
	tests := []struct {
		name    string
		details Details
		want    string
	}{
		{"empty details", Details{}, ""},
		{"deleted user", DeletedUserDetails(DeletedUserInfo{Name: "Dana"}), "Dana"},
		{"created user", CreatedUserDetails(CreatedUserInfo{Name: "Eve"}), "Eve"},
		{"deleted tool", DeletedToolDetails(DeletedToolInfo{Name: "FigJam"}), "FigJam"},
		{"deleted post", DeletedPostDetails(DeletedPostInfo{Title: "Launch notes"}), "Launch notes"},
		{"deleted review carries no name", DeletedReviewDetails(DeletedReviewInfo{Body: "great"}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.details.SnapshotName(); got != tt.want {
				t.Errorf("SnapshotName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetailsJSONShape(t *testing.T) {
	id := uuid.New()
	details := DeletedUserDetails(DeletedUserInfo{
		ID: id, Name: "Dana", Email: "dana@example.com", Role: "writer",
	})

	data, err := json.Marshal(details)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["deleted_user_info"]; !ok {
		t.Fatalf("payload missing deleted_user_info key: %s", data)
	}
	for _, absent := range []string{"created_user_info", "deleted_tool_info", "deleted_review_info", "deleted_post_info"} {
		if _, ok := raw[absent]; ok {
			t.Errorf("payload should omit unused variant %q: %s", absent, data)
		}
	}

	var back Details
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if back.Kind != DetailsDeletedUser || back.DeletedUser == nil || back.DeletedUser.Name != "Dana" {
		t.Errorf("round trip lost the snapshot: %+v", back)
	}

	if !(Details{}).IsZero() {
		t.Error("zero details should report IsZero")
	}
	if details.IsZero() {
		t.Error("populated details should not report IsZero")
	}
}
