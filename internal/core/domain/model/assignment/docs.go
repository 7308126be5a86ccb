// Package assignment contains the delivery assignment aggregate.
//
// A DeliveryAssignment links one order to one delivery partner and runs its
// own sub-status machine (assigned, accepted, picked_up, delivered, with
// rejected and cancelled as escapes). It is deliberately separate from the
// order status machine; OrderTargetFor is the single mapping between the two.
package assignment
