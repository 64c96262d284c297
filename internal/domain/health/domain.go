package health

import "time"

// ProbeResult is the outcome of a single probe. Immutable once produced.
type ProbeResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// CycleReport collects the results of one monitoring cycle, in probe order.
type CycleReport struct {
	Results   []ProbeResult `json:"results"`
	AllPassed bool          `json:"all_passed"`
	At        time.Time     `json:"at"`
}

// AlertState is the process-lifetime alert bookkeeping. It is not persisted:
// a restart resets the counter and both timestamps, which is a documented
// limitation inherited from the monitoring policy.
type AlertState struct {
	ConsecutiveFailures int
	LastAlertAt         *time.Time
	LastTestAt          *time.Time
}

// Policy holds the read-only alerting thresholds resolved at startup.
type Policy struct {
	FailureThreshold int
	AlertCooldown    time.Duration
	TestInterval     time.Duration // 0 disables periodic test notifications
	AlertsEnabled    bool
}

// Decision says what the current cycle should dispatch.
type Decision struct {
	Alert bool
	Test  bool
}
