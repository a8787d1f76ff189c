package runtime

// ClientAuthMode is the candidate config's auth_clients setting.
type ClientAuthMode string

const (
	ClientAuthRequired ClientAuthMode = "Required"
	ClientAuthOptional ClientAuthMode = "Optional"
	ClientAuthNo       ClientAuthMode = "No"
)

// TLSCandidateConfig is the caller-supplied desired TLS state (spec §4.3):
// the core never performs the handshake itself, only validates and plans
// the transition a surrounding listener must apply.
type TLSCandidateConfig struct {
	TLSPort      int
	CertFile     string
	KeyFile      string
	CAFile       string
	Protocols    []string
	Ciphers      string
	AuthClients  ClientAuthMode
}

// TLSTransitionPlan is the outcome of a successful apply_tls_config call:
// what the surrounding listener must do, described declaratively so the
// core never touches a socket or a crypto/tls.Config directly.
type TLSTransitionPlan struct {
	EnableListener    bool
	DisableListener   bool
	SwapContext       bool
	ConfigureConnType bool
}

// TLSCfgError is the typed error family for apply_tls_config failures
// (spec §4.3/§7): safety-gate violations, operational-knob mistakes, and
// Hardened-mode non-allowlisted rejections each carry a stable reason
// code.
type TLSCfgError struct {
	ReasonCode string
	Message    string
}

func (e *TLSCfgError) Error() string { return e.Message }

func tlsErr(reason, msg string) *TLSCfgError {
	return &TLSCfgError{ReasonCode: reason, Message: msg}
}

// TLSConfigState holds the currently-applied TLS configuration, letting
// apply_tls_config diff the candidate against it to decide whether a
// context swap or listener toggle is required.
type TLSConfigState struct {
	current *TLSCandidateConfig
	enabled bool
}

// NewTLSConfigState returns a state with TLS disabled.
func NewTLSConfigState() *TLSConfigState {
	return &TLSConfigState{}
}

// Enabled reports whether TLS is currently active.
func (t *TLSConfigState) Enabled() bool { return t.enabled }

// Current returns the currently-applied candidate config, or nil.
func (t *TLSConfigState) Current() *TLSCandidateConfig { return t.current }

func validateCandidate(c *TLSCandidateConfig) error {
	if c.TLSPort <= 0 {
		return nil // TLSPort <= 0 means "disable", validated separately.
	}
	if c.TLSPort < 0 || c.TLSPort > 65535 {
		return tlsErr("tlscfg.operational_knob_invalid", "invalid tls-port")
	}
	if c.CertFile == "" || c.KeyFile == "" {
		return tlsErr("tlscfg.safety_gate_missing_cert", "tls-cert-file and tls-key-file are required to enable TLS")
	}
	switch c.AuthClients {
	case ClientAuthRequired, ClientAuthOptional, ClientAuthNo, "":
	default:
		return tlsErr("tlscfg.operational_knob_invalid", "invalid tls-auth-clients value")
	}
	if c.AuthClients == ClientAuthRequired && c.CAFile == "" {
		return tlsErr("tlscfg.safety_gate_missing_ca", "tls-ca-cert-file is required when tls-auth-clients is \"yes\"")
	}
	return nil
}

// ApplyTLSConfig implements spec §4.3's apply_tls_config(candidate,
// now_ms): validates the candidate, produces a transition plan, and
// either applies it (updating TLSConfigState) or returns a typed
// TLSCfgError. In Hardened mode a safety-gate violation that is not
// allowlisted under MetadataSanitization is rejected with reason code
// tlscfg.hardened_nonallowlisted_rejected instead of the underlying
// validation error, so differential tests can distinguish "rejected by
// policy" from "rejected by validation". Every rejection (fail-closed or
// hardened-rejected) emits a ConfigDowngradeAbuse evidence event; a clean
// apply emits nothing.
func (rt *Runtime) ApplyTLSConfig(candidate TLSCandidateConfig, nowMs int64) (TLSTransitionPlan, error) {
	validationErr := validateCandidate(&candidate)

	if validationErr != nil {
		decision, severity := rt.Policy.Decide("ConfigDowngradeAbuse", MetadataSanitization)
		reasonCode := validationErr.(*TLSCfgError).ReasonCode
		rejectErr := validationErr
		if rt.Policy.Mode == Hardened && !rt.Policy.HardenedAllowlist[MetadataSanitization] &&
			reasonCode != "tlscfg.operational_knob_invalid" {
			reasonCode = "tlscfg.hardened_nonallowlisted_rejected"
			rejectErr = tlsErr(reasonCode, validationErr.Error())
		}
		if rt.Policy.EmitEvidenceLedger {
			rt.Evidence.Append(nowMs, Event{
				Mode:           rt.Policy.Mode,
				Severity:       severity,
				ThreatClass:    "ConfigDowngradeAbuse",
				DecisionAction: decision,
				Subsystem:      "tlscfg",
				Action:         "apply_tls_config",
				ReasonCode:     reasonCode,
				Reason:         validationErr.Error(),
			})
		}
		return TLSTransitionPlan{}, rejectErr
	}

	plan := TLSTransitionPlan{}
	wantEnabled := candidate.TLSPort > 0
	if wantEnabled && !rt.TLS.enabled {
		plan.EnableListener = true
		plan.SwapContext = true
		plan.ConfigureConnType = true
	} else if !wantEnabled && rt.TLS.enabled {
		plan.DisableListener = true
	} else if wantEnabled && rt.TLS.enabled {
		plan.SwapContext = configChanged(rt.TLS.current, &candidate)
		plan.ConfigureConnType = candidate.AuthClients != rt.TLS.current.AuthClients
	}

	rt.TLS.current = &candidate
	rt.TLS.enabled = wantEnabled
	return plan, nil
}

func configChanged(prev, next *TLSCandidateConfig) bool {
	if prev == nil {
		return true
	}
	if prev.CertFile != next.CertFile || prev.KeyFile != next.KeyFile || prev.CAFile != next.CAFile {
		return true
	}
	if prev.Ciphers != next.Ciphers || len(prev.Protocols) != len(next.Protocols) {
		return true
	}
	for i := range prev.Protocols {
		if prev.Protocols[i] != next.Protocols[i] {
			return true
		}
	}
	return false
}
