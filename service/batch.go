package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ihippik/jenkins-cli/jenkins"
)

// DefaultWorkers bounds BatchStatus when no worker count is given.
const DefaultWorkers = 4

// JobStatus is one row of a batch status query.
type JobStatus struct {
	Job       jenkins.JobPath       `json:"job"`
	Color     string                `json:"color,omitempty"`
	InQueue   bool                  `json:"inQueue"`
	LastBuild *jenkins.BuildSummary `json:"lastBuild,omitempty"`
	Err       error                 `json:"-"`
	Error     string                `json:"error,omitempty"`
}

type jobSummary struct {
	Color     string                `json:"color"`
	InQueue   bool                  `json:"inQueue"`
	LastBuild *jenkins.BuildSummary `json:"lastBuild"`
}

// BatchStatus fetches a summary of every job with at most workers requests in flight.
// A failing job is reported in its own row; rows keep the order of jobs.
func (s *Service) BatchStatus(ctx context.Context, jobs []jenkins.JobPath, workers int) []JobStatus {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	rows := make([]JobStatus, len(jobs))

	var g errgroup.Group
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job

		g.Go(func() error {
			rows[i] = s.jobStatus(ctx, job)
			return nil
		})
	}

	_ = g.Wait()

	return rows
}

func (s *Service) jobStatus(ctx context.Context, job jenkins.JobPath) JobStatus {
	row := JobStatus{Job: job}

	var sum jobSummary
	if err := s.get(ctx, jenkins.Address(job, jenkins.Tree(jenkins.SummaryTree)), &sum); err != nil {
		s.logger.WithError(err).WithField("job", job.String()).Debugln("job status failed")
		row.Err = err
		row.Error = err.Error()

		return row
	}

	row.Color = sum.Color
	row.InQueue = sum.InQueue
	row.LastBuild = sum.LastBuild

	return row
}
