package monitor

import (
	"time"

	"github.com/Vehask/plex-mount-health/internal/domain/health"
)

// Advance applies one cycle outcome to the alert state and decides what to
// dispatch. It is a pure function of (state, outcome, now, policy) so the
// transition rules are testable without a wall clock.
//
// A passing cycle resets the failure counter unconditionally. A failing
// cycle increments it by exactly one; an alert becomes eligible once the
// counter reaches the threshold, gated by the cooldown window. The counter
// keeps growing past the threshold — only the cooldown limits repeat alerts.
// The periodic test notification runs on its own timer, independent of
// health state and of the alert cooldown.
func Advance(st health.AlertState, allPassed bool, now time.Time, p health.Policy) (health.AlertState, health.Decision) {
	var d health.Decision

	if allPassed {
		st.ConsecutiveFailures = 0
	} else {
		st.ConsecutiveFailures++
		if st.ConsecutiveFailures >= p.FailureThreshold && shouldAlert(st, now, p) {
			d.Alert = true
		}
	}

	if shouldSendTest(st, now, p) {
		d.Test = true
	}

	return st, d
}

func shouldAlert(st health.AlertState, now time.Time, p health.Policy) bool {
	if !p.AlertsEnabled {
		return false
	}
	if st.LastAlertAt == nil {
		return true
	}
	return now.Sub(*st.LastAlertAt) >= p.AlertCooldown
}

func shouldSendTest(st health.AlertState, now time.Time, p health.Policy) bool {
	if !p.AlertsEnabled || p.TestInterval <= 0 {
		return false
	}
	if st.LastTestAt == nil {
		return true
	}
	return now.Sub(*st.LastTestAt) >= p.TestInterval
}

// MarkAlertSent records a dispatch attempt. It is called whether or not
// delivery succeeded: a transport failure must wait out the cooldown too,
// not retry on the next cycle.
func MarkAlertSent(st health.AlertState, now time.Time) health.AlertState {
	st.LastAlertAt = &now
	return st
}

// MarkTestSent records a test notification attempt on its own timer.
func MarkTestSent(st health.AlertState, now time.Time) health.AlertState {
	st.LastTestAt = &now
	return st
}
