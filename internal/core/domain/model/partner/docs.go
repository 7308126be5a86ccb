// Package partner contains the DeliveryPartner aggregate.
//
// DeliveryPartner tracks the state the assignment workflow needs about a
// partner: last reported position, rating, availability and current
// assignment load. Partner identity, payouts and onboarding live elsewhere.
package partner
