package checks

import "ozzus/check-jenkins-agent/internal/domain"

// Classify maps an agent's state to a severity. Offline agents that were
// taken down by an operator are reported according to policy; any policy
// other than OK or CRIT is treated as WARN.
func Classify(record domain.AgentRecord, policy domain.TempOfflinePolicy, host, controllerURL string) domain.CheckOutcome {
	if !record.Offline {
		return domain.NewOutcome(domain.SeverityOK, "%s is connected to %s", host, controllerURL)
	}

	reason := record.OfflineCauseReason

	if !record.TemporarilyOffline {
		return domain.NewOutcome(domain.SeverityCritical, "%s is offline from %s! Reason: %s", host, controllerURL, reason)
	}

	switch policy {
	case domain.TempOfflineOK:
		return domain.NewOutcome(domain.SeverityOK, "%s has been manually marked offline from %s with reason: %s", host, controllerURL, reason)
	case domain.TempOfflineCrit:
		return domain.NewOutcome(domain.SeverityCritical, "%s has been manually marked offline from %s! Reason: %s", host, controllerURL, reason)
	default:
		return domain.NewOutcome(domain.SeverityWarning, "%s has been manually marked offline from %s with reason: %s", host, controllerURL, reason)
	}
}
