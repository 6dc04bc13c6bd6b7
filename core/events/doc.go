// Package events defines the dispatch events emitted on the event bus.
//
// Available event types:
//   - AssignmentEvent: an idle car was matched to a hall call
//   - ClaimEvent: a car took ownership of a hall call while passing or on arrival
//   - CancellationEvent: an empty car's trip was dropped because another car stopped there
//   - ParkEvent: an idle high-capacity car was sent to the lobby
//   - ViolationEvent: an ownership invariant or host contract was broken
//   - PassEvent: an assignment pass finished or was dropped
package events
