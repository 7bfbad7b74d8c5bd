// Package domain models the Harara heatwave early-warning data as seen by the
// operator dashboard.
//
// # Data Source
//
// Every entity here is a transient projection of JSON returned by the Harara
// backend. Predictions are produced by the backend's daily modeling run, alerts
// by automatic detection or by an operator's manual send, and SMS recipients by
// registrations made through this dashboard. Nothing is persisted or cached on
// this side; each page load fetches fresh data.
//
// # Towns
//
// Six fixed South Sudan towns are monitored. The registry in [Towns] supplies
// coordinates for the map and the options of every town selector. A town name
// coming from a form must match a registry entry exactly.
//
// # Risk Levels
//
// Risk is derived from a probability in [0,1] by [Classify]:
//
//	p >= 0.75         High
//	0.67 <= p < 0.75  Moderate
//	p < 0.67          Low
//
// Both bounds are inclusive on the lower side. Alert severities reuse the same
// [Level] variant, parsed from the backend's "High", "Moderate", and "Low" strings.
//
// # Timestamps
//
// The backend stores documents in Firestore, so times arrive either as
// {"seconds": n} objects or as ISO-8601 strings depending on the endpoint.
// [Timestamp] accepts both.
package domain
