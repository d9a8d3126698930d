package internaldefs

import (
	goToken "github.com/MrEthical07/goToken"
)

type CounterDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goToken.MetricLoginSuccess, Name: "gotoken_login_success_total", Help: "Successful logins."},
	{ID: goToken.MetricLoginFailure, Name: "gotoken_login_failure_total", Help: "Failed logins."},
	{ID: goToken.MetricRefreshSuccess, Name: "gotoken_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goToken.MetricRefreshFailure, Name: "gotoken_refresh_failure_total", Help: "Failed refresh attempts, replays included."},
	{ID: goToken.MetricRefreshReplay, Name: "gotoken_refresh_replay_total", Help: "Refresh attempts with an already consumed token."},
	{ID: goToken.MetricLogoutSuccess, Name: "gotoken_logout_success_total", Help: "Successful logouts."},
	{ID: goToken.MetricLogoutFailure, Name: "gotoken_logout_failure_total", Help: "Failed logouts."},
	{ID: goToken.MetricAuthenticateSuccess, Name: "gotoken_authenticate_success_total", Help: "Accepted bearer tokens."},
	{ID: goToken.MetricAuthenticateRejected, Name: "gotoken_authenticate_rejected_total", Help: "Rejected bearer tokens."},
	{ID: goToken.MetricAuthenticateAnonymous, Name: "gotoken_authenticate_anonymous_total", Help: "Requests without a bearer token."},
	{ID: goToken.MetricRevocationStoreError, Name: "gotoken_revocation_store_errors_total", Help: "Revocation store failures."},
}

var HistogramDefs = []HistogramDef{
	{ID: goToken.MetricAuthenticateLatency, Name: "gotoken_authenticate_latency_seconds", Help: "Bearer validation latency."},
}

// AuditDroppedName is exported alongside the engine counters.
const (
	AuditDroppedName = "gotoken_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped by dispatcher backpressure."
)

// HistogramUpperBounds are the finite bucket bounds in seconds. The last engine
// bucket is +Inf.
var HistogramUpperBounds = [goToken.HistogramBuckets - 1]float64{
	0.005,
	0.01,
	0.025,
	0.05,
	0.1,
	0.25,
	0.5,
}

// HistogramBoundSuffix names each bucket in instrument names, +Inf included.
var HistogramBoundSuffix = [goToken.HistogramBuckets]string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

func NormalizeBuckets(raw []uint64) [goToken.HistogramBuckets]uint64 {
	var out [goToken.HistogramBuckets]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [goToken.HistogramBuckets]uint64) [goToken.HistogramBuckets]uint64 {
	var out [goToken.HistogramBuckets]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
