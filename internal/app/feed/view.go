package feed

import (
	"cmp"
	"slices"
)

// sendState tracks a message this device sent and no poll has returned yet.
type sendState int

const (
	sendInFlight sendState = iota
	sendStored
	sendFailed
)

type pending struct {
	msg   Message
	state sendState
}

// Entry is one displayed message.
type Entry struct {
	Message

	// Mine marks messages sent by the local identity.
	Mine bool `json:"mine"`

	// Pending marks an optimistic message not yet returned by a poll.
	Pending bool `json:"pending,omitempty"`

	// Failed marks an optimistic message whose write failed. It disappears on the next poll.
	Failed bool `json:"failed,omitempty"`
}

// View is the locally displayed feed. It is not safe for concurrent use.
type View struct {
	userID    string
	confirmed []Message
	pending   []pending
}

// NewView returns an empty view for the identity userID.
func NewView(userID string) *View {
	return &View{userID: userID}
}

// sortAndCap orders messages by timestamp, keeping the input order of equal timestamps,
// and keeps the newest MaxMessages.
func sortAndCap(messages []Message) []Message {
	slices.SortStableFunc(messages, func(a, b Message) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	if len(messages) > MaxMessages {
		messages = messages[len(messages)-MaxMessages:]
	}

	return messages
}

// Replace installs a fetched snapshot as the authoritative window and reconciles
// optimistic messages against it:
//   - a message present in the snapshot is confirmed and leaves the pending list;
//   - a message whose write failed is dropped;
//   - a stored message older than a full window is dropped, since it can no longer show;
//   - anything else stays pending until a later poll returns it.
//
// Replacing twice with the same snapshot leaves the view unchanged.
func (v *View) Replace(fetched []Message) {
	v.confirmed = sortAndCap(slices.Clone(fetched))

	seen := make(map[string]struct{}, len(v.confirmed))
	for _, msg := range v.confirmed {
		seen[msg.ID] = struct{}{}
	}

	full := len(v.confirmed) == MaxMessages
	var oldest int64
	if len(v.confirmed) > 0 {
		oldest = v.confirmed[0].Timestamp
	}

	v.pending = slices.DeleteFunc(v.pending, func(p pending) bool {
		if _, ok := seen[p.msg.ID]; ok {
			return true
		}

		switch p.state {
		case sendFailed:
			return true
		case sendStored:
			return full && p.msg.Timestamp < oldest
		default:
			return false
		}
	})
}

// Add shows msg immediately, before any poll returns it.
func (v *View) Add(msg Message) {
	v.pending = append(v.pending, pending{msg: msg, state: sendInFlight})
}

// MarkStored records that the write of the optimistic message id succeeded.
func (v *View) MarkStored(id string) {
	v.setState(id, sendStored)
}

// MarkFailed records that the write of the optimistic message id failed.
func (v *View) MarkFailed(id string) {
	v.setState(id, sendFailed)
}

func (v *View) setState(id string, state sendState) {
	for i := range v.pending {
		if v.pending[i].msg.ID == id {
			v.pending[i].state = state
			return
		}
	}
}

// PendingCount returns how many optimistic messages await confirmation.
func (v *View) PendingCount() int {
	return len(v.pending)
}

// Entries returns the displayed feed: confirmed and optimistic messages merged, sorted by
// timestamp and capped at MaxMessages.
func (v *View) Entries() []Entry {
	merged := make([]Message, 0, len(v.confirmed)+len(v.pending))
	merged = append(merged, v.confirmed...)

	state := make(map[string]sendState, len(v.pending))
	for _, p := range v.pending {
		merged = append(merged, p.msg)
		state[p.msg.ID] = p.state
	}

	merged = sortAndCap(merged)

	entries := make([]Entry, len(merged))
	for i, msg := range merged {
		st, isPending := state[msg.ID]
		entries[i] = Entry{
			Message: msg,
			Mine:    msg.UserID == v.userID,
			Pending: isPending,
			Failed:  isPending && st == sendFailed,
		}
	}

	return entries
}
