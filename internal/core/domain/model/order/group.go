package order

import (
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// GroupParticipant is one member of a group order with their join state.
type GroupParticipant struct {
	UserID kernel.UUID
	// Status is the participant's sub-status: "invited", "joined" or "locked".
	Status string
}

// GroupOrder is optional metadata for orders placed collaboratively: a join
// code, the hosting customer and the participant list. It has no behavior of
// its own; participants' carts are merged before the order reaches this
// subsystem.
type GroupOrder struct {
	code         string
	hostID       kernel.UUID
	participants []GroupParticipant
}

// NewGroupOrder creates group-order metadata.
// The join code must be non-empty and the host must be a valid user reference.
func NewGroupOrder(code string, hostID kernel.UUID, participants []GroupParticipant) (*GroupOrder, error) {
	if code == "" {
		return nil, errs.NewValueIsRequiredError("group code")
	}
	if err := hostID.Validate(); err != nil {
		return nil, err
	}
	for _, p := range participants {
		if err := p.UserID.Validate(); err != nil {
			return nil, err
		}
	}

	return &GroupOrder{
		code:         code,
		hostID:       hostID,
		participants: append([]GroupParticipant(nil), participants...),
	}, nil
}

// Code returns the join code.
func (g *GroupOrder) Code() string {
	return g.code
}

// HostID returns the hosting customer's reference.
func (g *GroupOrder) HostID() kernel.UUID {
	return g.hostID
}

// Participants returns a copy of the participant list.
func (g *GroupOrder) Participants() []GroupParticipant {
	return append([]GroupParticipant(nil), g.participants...)
}

// IsParticipant reports whether the given user is the host or a listed participant.
func (g *GroupOrder) IsParticipant(userID kernel.UUID) bool {
	if g.hostID.IsEqual(userID) {
		return true
	}
	for _, p := range g.participants {
		if p.UserID.IsEqual(userID) {
			return true
		}
	}
	return false
}
