// Package quota contains the SubscriptionQuota aggregate.
//
// SubscriptionQuota gates order admission for a restaurant against its plan's
// order limit within a billing period. Plan management and billing live
// elsewhere; this package only answers "may this restaurant admit another
// order" and records consumption.
package quota
