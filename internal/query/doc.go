// Package query drives single free-text match requests.
//
// A Controller moves through Idle, Debouncing, InFlight, Resolved, and Failed.
// In submit mode a request is dispatched only by Submit and a second Submit
// while one is in flight is refused with ErrBusy. In auto mode every Input
// restarts a debounce timer and supersedes any request already in flight;
// the request fires once input has been quiet for the debounce interval.
//
// Every dispatch increments a generation counter. A response may change the
// controller's state only when its generation is still current, so an older
// response arriving after a newer one can never overwrite it. Superseded
// requests also have their contexts cancelled.
//
// Timers go through the Scheduler interface so tests can drive time by hand.
package query
