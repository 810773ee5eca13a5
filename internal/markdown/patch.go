package markdown

import (
	"os"
	"time"

	"github.com/lumenlearn/lumen/internal/types"
)

// PatchUnitStatus performs a narrow in-place edit of an existing unit
// document: it rewrites the status field in the metadata header and, only
// when the transition is into completed, writes the completion-date field,
// replacing any existing one rather than duplicating it. Everything outside
// those fields, including the body, is preserved byte-for-byte.
//
// This path never creates files: a missing document fails with a
// NotFoundError. Full regeneration is the job of RenderAll and Sync.
func PatchUnitStatus(path string, newStatus types.UnitStatus, completionDate *time.Time) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.NotFoundError{Kind: "document", ID: path}
		}
		return &types.IOError{Op: "read", Path: path, Recoverable: false, Err: err}
	}

	fm, body, ok := ParseDocument(string(data))
	if !ok {
		return &types.ValidationError{Path: path, Reason: "no metadata header found"}
	}

	fm.Set("status", string(newStatus))
	if newStatus == types.StatusCompleted && completionDate != nil {
		fm.Set("completed_date", completionDate.Format(time.RFC3339))
	}

	updated := fm.Marshal() + "\n" + body
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return &types.IOError{Op: "write", Path: path, Recoverable: true, Err: err}
	}
	return nil
}
