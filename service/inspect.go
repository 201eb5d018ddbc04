package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ihippik/jenkins-cli/jenkins"
)

// JobDetail is a job together with the path it was requested under.
type JobDetail struct {
	Path jenkins.JobPath `json:"path"`
	jenkins.Job
}

// BuildDetail is a build together with the reference it was requested under.
type BuildDetail struct {
	Ref jenkins.BuildRef `json:"-"`
	jenkins.Build
}

// ServerInfo is the result of a connectivity check. Parsed is false when the server
// answered 200 with a body that is not JSON.
type ServerInfo struct {
	URL    string `json:"url"`
	Parsed bool   `json:"parsed"`
	jenkins.Server
}

// ListJobs lists the jobs of the root or of the given folder.
func (s *Service) ListJobs(ctx context.Context, folder jenkins.JobPath) ([]jenkins.JobEntry, error) {
	var list jenkins.JobList

	if err := s.get(ctx, jenkins.Address(folder, jenkins.Tree(jenkins.JobListTree)), &list); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	return list.Jobs, nil
}

// JobInfo fetches the details of one job.
func (s *Service) JobInfo(ctx context.Context, job jenkins.JobPath) (*JobDetail, error) {
	detail := &JobDetail{Path: job}

	if err := s.get(ctx, jenkins.Address(job, jenkins.Tree(jenkins.JobInfoTree)), &detail.Job); err != nil {
		return nil, fmt.Errorf("job info: %w", err)
	}

	return detail, nil
}

// BuildInfo fetches the details of one build.
func (s *Service) BuildInfo(ctx context.Context, ref jenkins.BuildRef) (*BuildDetail, error) {
	detail := &BuildDetail{Ref: ref}

	if err := s.get(ctx, ref.Address(jenkins.Tree(jenkins.BuildInfoTree)), &detail.Build); err != nil {
		return nil, fmt.Errorf("build info: %w", err)
	}

	return detail, nil
}

// StopBuild aborts a running build.
func (s *Service) StopBuild(ctx context.Context, ref jenkins.BuildRef) error {
	out := s.jenkins.Execute(ctx, ref.Address(jenkins.StopBuild), http.MethodPost, nil)
	if !out.In(http.StatusOK, http.StatusFound) {
		return fmt.Errorf("stop build: %w", out.Err())
	}

	s.logger.WithField("build", ref.String()).Infoln("build stopped")

	return nil
}

// Queue lists the pending items of the build queue.
func (s *Service) Queue(ctx context.Context) ([]jenkins.QueueItem, error) {
	var queue jenkins.Queue

	if err := s.get(ctx, jenkins.QueuePath+"/"+jenkins.Tree(jenkins.QueueTree), &queue); err != nil {
		return nil, fmt.Errorf("queue: %w", err)
	}

	return queue.Items, nil
}

// Check probes connectivity and authentication.
func (s *Service) Check(ctx context.Context, baseURL string) (*ServerInfo, error) {
	out := s.jenkins.Execute(ctx, jenkins.Tree(jenkins.ServerTree), http.MethodGet, nil)
	if !out.OK() {
		return nil, out.Err()
	}

	info := &ServerInfo{URL: baseURL, Parsed: true}

	if err := jenkins.Decode(out, &info.Server); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"url": baseURL}).Debugln("connected, unreadable server info")
		info.Parsed = false
	}

	return info, nil
}
