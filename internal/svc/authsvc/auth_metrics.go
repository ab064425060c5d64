package authsvc

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalid            = "invalid"
	OutcomeConflict           = "conflict"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeExpired            = "expired"
	OutcomeMalformed          = "malformed"
	OutcomeError              = "error"
)

// AuthMetrics counts authentication outcomes. A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	Signups            *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	TokenVerifications *prometheus.CounterVec
}

// NewAuthMetrics creates and registers the auth collectors on registry.
func NewAuthMetrics(registry prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		Signups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wtwr_auth_signups_total",
				Help: "Signup attempts by outcome",
			},
			[]string{"outcome"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wtwr_auth_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		TokenVerifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wtwr_auth_token_verifications_total",
				Help: "Session token verifications by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(m.Signups, m.Logins, m.TokenVerifications)

	return m
}

func (m *AuthMetrics) signup(outcome string) {
	if m != nil {
		m.Signups.WithLabelValues(outcome).Inc()
	}
}

func (m *AuthMetrics) login(outcome string) {
	if m != nil {
		m.Logins.WithLabelValues(outcome).Inc()
	}
}

func (m *AuthMetrics) tokenVerification(outcome string) {
	if m != nil {
		m.TokenVerifications.WithLabelValues(outcome).Inc()
	}
}
