package quest

import (
	"time"

	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/model"
)

// The lifecycle is AVAILABLE -> IN_PROGRESS -> COMPLETED -> APPROVED, with
// IN_PROGRESS -> AVAILABLE on abandon. Each transition checks state before
// authorization and writes nothing unless every check passes.

// Accept assigns an AVAILABLE quest to charID.
func Accept(q *model.Quest, charID int64, now time.Time) error {
	if q.Status != model.QuestAvailable {
		return gameerr.New(gameerr.InvalidTransition, "cannot accept quest %d in %s", q.ID, q.Status)
	}
	q.Status = model.QuestInProgress
	q.AssignedCharID = &charID
	q.StartedAt = &now
	return nil
}

// Complete marks the assignee's IN_PROGRESS quest as done, pending approval.
func Complete(q *model.Quest, charID int64, now time.Time) error {
	if q.Status != model.QuestInProgress {
		return gameerr.New(gameerr.InvalidTransition, "cannot complete quest %d in %s", q.ID, q.Status)
	}
	if !assignedTo(q, charID) {
		return gameerr.New(gameerr.Unauthorized, "quest %d is not assigned to character %d", q.ID, charID)
	}
	q.Status = model.QuestCompleted
	q.CompletedAt = &now
	return nil
}

// Approve finalizes a COMPLETED quest. Only a guildmaster may approve.
func Approve(q *model.Quest, role model.GuildRole, now time.Time) error {
	if q.Status != model.QuestCompleted {
		return gameerr.New(gameerr.InvalidTransition, "cannot approve quest %d in %s", q.ID, q.Status)
	}
	if role != model.RoleGuildmaster {
		return gameerr.New(gameerr.Unauthorized, "approving requires %s, caller is %q", model.RoleGuildmaster, role)
	}
	q.Status = model.QuestApproved
	q.ApprovedAt = &now
	return nil
}

// Abandon returns the assignee's IN_PROGRESS quest to the board.
func Abandon(q *model.Quest, charID int64) error {
	if q.Status != model.QuestInProgress {
		return gameerr.New(gameerr.InvalidTransition, "cannot abandon quest %d in %s", q.ID, q.Status)
	}
	if !assignedTo(q, charID) {
		return gameerr.New(gameerr.Unauthorized, "quest %d is not assigned to character %d", q.ID, charID)
	}
	q.Status = model.QuestAvailable
	q.AssignedCharID = nil
	q.StartedAt = nil
	q.CompletedAt = nil
	return nil
}

func assignedTo(q *model.Quest, charID int64) bool {
	return q.AssignedCharID != nil && *q.AssignedCharID == charID
}
