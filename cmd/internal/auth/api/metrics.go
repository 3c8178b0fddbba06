package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels are low-cardinality by construction: success, plus the
// error taxonomy buckets.
var (
	enrollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facegate",
		Subsystem: "auth",
		Name:      "enroll_total",
		Help:      "Enrollment attempts by outcome.",
	}, []string{"outcome"})

	loginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facegate",
		Subsystem: "auth",
		Name:      "login_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	faceVerifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facegate",
		Subsystem: "auth",
		Name:      "face_verify_total",
		Help:      "Challenge redemptions by outcome.",
	}, []string{"outcome"})
)

const (
	outcomeSuccess    = "success"
	outcomeInvalid    = "invalid_input"
	outcomeConflict   = "conflict"
	outcomeDenied     = "denied"
	outcomeChallenged = "challenged"
	outcomeError      = "error"
)
