package checks

import (
	"errors"
	"fmt"

	"ozzus/check-jenkins-agent/internal/domain"
)

var (
	ErrHostNotFound    = errors.New("host not found")
	ErrMalformedRoster = errors.New("malformed roster")
)

// LocateError carries the host and controller the lookup was made against.
type LocateError struct {
	Host       string
	Controller string
	Kind       error
}

func (e *LocateError) Error() string {
	return fmt.Sprintf("locate %s on %s: %v", e.Host, e.Controller, e.Kind)
}

func (e *LocateError) Unwrap() error {
	return e.Kind
}

// Locate returns the first roster entry whose display name is exactly host.
func Locate(roster *domain.Roster, host, controllerURL string) (domain.AgentRecord, error) {
	agents, ok := roster.Agents()
	if !ok {
		return domain.AgentRecord{}, &LocateError{Host: host, Controller: controllerURL, Kind: ErrMalformedRoster}
	}

	for _, agent := range agents {
		if agent.DisplayName == host {
			return agent, nil
		}
	}

	return domain.AgentRecord{}, &LocateError{Host: host, Controller: controllerURL, Kind: ErrHostNotFound}
}
