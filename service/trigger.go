package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ihippik/jenkins-cli/jenkins"
)

// QueuedBuild is a trigger that is still waiting in the queue.
type QueuedBuild struct {
	ID  int64  `json:"id"`
	Why string `json:"why,omitempty"`
}

// TriggerResult describes an accepted trigger. At most one of Queued and Build is set;
// both stay empty when Jenkins has nothing to correlate yet.
type TriggerResult struct {
	Job    jenkins.JobPath `json:"job"`
	Queued *QueuedBuild    `json:"queued,omitempty"`
	Build  int             `json:"build,omitempty"`
}

// Correlated reports whether the trigger could be tied to a queue item or build.
func (r *TriggerResult) Correlated() bool {
	return r.Queued != nil || r.Build > 0
}

// ParseParams turns KEY=VALUE pairs into a map. Pairs without "=" are skipped and
// later keys win.
func ParseParams(pairs []string) map[string]string {
	params := make(map[string]string, len(pairs))

	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}

		params[key] = value
	}

	return params
}

// TriggerBuild starts a build of job and tries to find out what became of it.
func (s *Service) TriggerBuild(ctx context.Context, job jenkins.JobPath, params map[string]string) (*TriggerResult, error) {
	path := jenkins.Address(job, jenkins.BuildTrigger)

	var form url.Values
	if len(params) > 0 {
		path = jenkins.Address(job, jenkins.BuildWithParameter)
		form = url.Values{}

		for k, v := range params {
			form.Set(k, v)
		}
	}

	out := s.jenkins.Execute(ctx, path, http.MethodPost, form)
	if !out.In(http.StatusOK, http.StatusCreated, http.StatusFound) {
		return nil, fmt.Errorf("start build: %w", out.Err())
	}

	s.logger.WithFields(logrus.Fields{
		"job":    job.String(),
		"status": out.Status,
		"params": len(params),
	}).Infoln("build triggered")

	result := &TriggerResult{Job: job}
	s.correlate(ctx, result)

	return result, nil
}

// correlate reads the job's queue item and last build once. Failures leave the result empty.
func (s *Service) correlate(ctx context.Context, result *TriggerResult) {
	var state jenkins.TriggerState

	if err := s.get(ctx, jenkins.Address(result.Job, jenkins.Tree(jenkins.TriggerTree)), &state); err != nil {
		s.logger.WithError(err).WithField("job", result.Job.String()).Debugln("no correlation data")
		return
	}

	switch {
	case state.QueueItem != nil:
		result.Queued = &QueuedBuild{ID: state.QueueItem.ID, Why: state.QueueItem.Why}
	case state.LastBuild != nil && state.LastBuild.Number > 0:
		result.Build = state.LastBuild.Number
	}
}
