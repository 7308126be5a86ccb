// Package order provides domain entities and business logic for order
// coordination. It implements the Order aggregate root with lifecycle
// management, role-gated state transitions and an append-only status history.
//
// The package includes:
//   - Order: The aggregate root that manages identity, line items, money breakdown and lifecycle
//   - Status: A state machine that enforces valid order status transitions
//   - Role: The actor kinds, with the role→allowed-target authorization table as data
//   - StatusEvent: An immutable record of one accepted transition
//
// Key business rules:
//   - total always equals subtotal + tax + delivery fee + platform fee
//   - status follows the fulfilment path pending -> confirmed -> preparing ->
//     ready_for_pickup -> out_for_delivery -> delivered, with cancelled,
//     rejected and failed reachable from any non-terminal state
//   - a transition must pass both the actor's role table row and the state graph
//   - re-proposing the current status is an idempotent no-op
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
