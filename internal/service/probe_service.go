package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"ozzus/check-jenkins-agent/internal/backend"
	"ozzus/check-jenkins-agent/internal/checks"
	"ozzus/check-jenkins-agent/internal/domain"
)

type RosterFetcher interface {
	FetchRoster(ctx context.Context) (*domain.Roster, error)
}

type ProbeService struct {
	fetcher       RosterFetcher
	log           *slog.Logger
	controllerURL string
	host          string
	policy        domain.TempOfflinePolicy
}

type Config struct {
	// ControllerURL is the instance URL exactly as the operator gave it; it
	// is only used in messages.
	ControllerURL string
	Host          string
	Policy        domain.TempOfflinePolicy
}

func NewProbeService(fetcher RosterFetcher, log *slog.Logger, config Config) *ProbeService {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if config.Policy == "" {
		config.Policy = domain.DefaultTempOfflinePolicy
	}

	return &ProbeService{
		fetcher:       fetcher,
		log:           log.With("host", config.Host, "controller", config.ControllerURL),
		controllerURL: config.ControllerURL,
		host:          config.Host,
		policy:        config.Policy,
	}
}

// Run fetches the roster once, locates the host and classifies it.
// Any failure on the way is reported as UNKNOWN.
func (s *ProbeService) Run(ctx context.Context) domain.CheckOutcome {
	start := time.Now()
	s.log.Debug("fetching agent roster")

	roster, err := s.fetcher.FetchRoster(ctx)
	if err != nil {
		s.log.Error("failed to fetch roster", "error", err)
		return s.fetchFailure(err)
	}

	s.log.Debug("roster fetched", "duration", time.Since(start))

	record, err := checks.Locate(roster, s.host, s.controllerURL)
	if err != nil {
		s.log.Error("failed to locate agent", "error", err)
		return s.locateFailure(err)
	}

	s.log.Debug("agent located",
		"offline", record.Offline,
		"temporarily_offline", record.TemporarilyOffline,
		"policy", s.policy,
	)

	return checks.Classify(record, s.policy, s.host, s.controllerURL)
}

func (s *ProbeService) fetchFailure(err error) domain.CheckOutcome {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return domain.NewOutcome(domain.SeverityUnknown,
			"Unauthorized while fetching %s computers, check the supplied credentials", s.controllerURL)
	case errors.Is(err, backend.ErrEmptyResponse):
		return domain.NewOutcome(domain.SeverityUnknown,
			"Empty response while fetching %s computers", s.controllerURL)
	case errors.Is(err, backend.ErrMalformedJSON):
		return domain.NewOutcome(domain.SeverityUnknown,
			"Unable to parse %s computers response: %v", s.controllerURL, cause(err))
	default:
		return domain.NewOutcome(domain.SeverityUnknown,
			"Unknown error while fetching %s computers: %v", s.controllerURL, cause(err))
	}
}

func (s *ProbeService) locateFailure(err error) domain.CheckOutcome {
	if errors.Is(err, checks.ErrMalformedRoster) {
		return domain.NewOutcome(domain.SeverityUnknown, "%s did not return a computer list", s.controllerURL)
	}

	return domain.NewOutcome(domain.SeverityUnknown, "%s is not a part of the %s swarm cluster!", s.host, s.controllerURL)
}

// cause drops the FetchError prefix, which repeats the URL already in the message.
func cause(err error) error {
	var fetchErr *backend.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Err != nil {
		return fetchErr.Err
	}
	return err
}
