package order

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

// ErrStatusEventIsNotConstructed is returned when using an improperly initialized StatusEvent.
var ErrStatusEventIsNotConstructed = errors.New("StatusEvent must be created via NewStatusEvent constructor")

// StatusEvent is an immutable record of one accepted status transition.
// Events are append-only; their commit order is the source of truth for an
// order's history, and the Order's cached status is a projection of the latest
// event.
type StatusEvent struct {
	id        kernel.UUID
	orderID   kernel.UUID
	status    Status
	changedBy kernel.UUID
	userType  Role
	reason    string
	metadata  map[string]any
	createdAt time.Time
	guard     guard.ConstructorGuard
}

// NewStatusEvent creates a status event for one accepted transition.
// Reason and metadata are optional; metadata is copied so later mutation of the
// caller's map cannot alter the event.
func NewStatusEvent(
	id kernel.UUID,
	orderID kernel.UUID,
	status Status,
	changedBy kernel.UUID,
	userType Role,
	reason string,
	metadata map[string]any,
	createdAt time.Time,
) (*StatusEvent, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		status.Validate(),
		changedBy.Validate(),
		userType.Validate(),
	); err != nil {
		return nil, err
	}

	var meta map[string]any
	if len(metadata) > 0 {
		meta = make(map[string]any, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}

	return &StatusEvent{
		id:        id,
		orderID:   orderID,
		status:    status,
		changedBy: changedBy,
		userType:  userType,
		reason:    reason,
		metadata:  meta,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the StatusEvent was created through NewStatusEvent.
func (e *StatusEvent) Validate() error {
	if e == nil {
		return ErrStatusEventIsNotConstructed
	}
	return e.guard.Validate(ErrStatusEventIsNotConstructed)
}

// ID returns the event's unique identifier.
func (e *StatusEvent) ID() kernel.UUID {
	return e.id
}

// OrderID returns the order the event belongs to.
func (e *StatusEvent) OrderID() kernel.UUID {
	return e.orderID
}

// Status returns the status the order moved to.
func (e *StatusEvent) Status() Status {
	return e.status
}

// ChangedBy returns the actor who proposed the transition.
func (e *StatusEvent) ChangedBy() kernel.UUID {
	return e.changedBy
}

// UserType returns the actor's role.
func (e *StatusEvent) UserType() Role {
	return e.userType
}

// Reason returns the optional free-text reason.
func (e *StatusEvent) Reason() string {
	return e.reason
}

// Metadata returns a copy of the optional structured metadata.
func (e *StatusEvent) Metadata() map[string]any {
	if e.metadata == nil {
		return nil
	}
	meta := make(map[string]any, len(e.metadata))
	for k, v := range e.metadata {
		meta[k] = v
	}
	return meta
}

// CreatedAt returns the event's timestamp.
func (e *StatusEvent) CreatedAt() time.Time {
	return e.createdAt
}
