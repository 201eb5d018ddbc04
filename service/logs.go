package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ihippik/jenkins-cli/jenkins"
)

// NoTail disables console truncation.
const NoTail = -1

// StageStatus is the status tag of a pipeline stage. Jenkins may send values
// beyond the known ones; they are kept as they are.
type StageStatus string

// Known stage statuses.
const (
	StageSuccess     StageStatus = "SUCCESS"
	StageFailed      StageStatus = "FAILED"
	StageInProgress  StageStatus = "IN_PROGRESS"
	StageNotExecuted StageStatus = "NOT_EXECUTED"
	StageAborted     StageStatus = "ABORTED"
	StageUnstable    StageStatus = "UNSTABLE"
	StagePaused      StageStatus = "PAUSED_PENDING_INPUT"
)

// Stage is one pipeline stage.
type Stage struct {
	Name     string      `json:"name"`
	Status   StageStatus `json:"status"`
	Duration int64       `json:"durationSeconds"`
}

// PipelineReport is either the stage view of a run or, when the stage API is
// unavailable, the console log of the build.
type PipelineReport struct {
	Build    jenkins.BuildRef `json:"-"`
	Name     string           `json:"name,omitempty"`
	Status   string           `json:"status,omitempty"`
	Duration int64            `json:"durationSeconds"`
	Stages   []Stage          `json:"stages,omitempty"`

	Fallback bool   `json:"fallback"`
	Console  string `json:"console,omitempty"`
}

// ConsoleLog fetches the console text of a build and keeps only the last tail lines
// unless tail is NoTail.
func (s *Service) ConsoleLog(ctx context.Context, ref jenkins.BuildRef, tail int) (string, error) {
	out := s.jenkins.Execute(ctx, ref.Address(jenkins.ConsoleText), http.MethodGet, nil)
	if !out.OK() {
		return "", fmt.Errorf("console log: %w", out.Err())
	}

	if tail == NoTail {
		return out.Body, nil
	}

	return Tail(out.Body, tail), nil
}

// Tail returns the last n lines of text. A trailing newline terminates the last line
// rather than starting an empty one.
func Tail(text string, n int) string {
	if n <= 0 {
		return ""
	}

	body := strings.TrimSuffix(text, "\n")
	lines := strings.Split(body, "\n")

	if n >= len(lines) {
		return text
	}

	tail := strings.Join(lines[len(lines)-n:], "\n")
	if len(body) != len(text) {
		tail += "\n"
	}

	return tail
}

// PipelineStages describes the stages of a pipeline run. Builds without a stage view
// fall back to the console log.
func (s *Service) PipelineStages(ctx context.Context, ref jenkins.BuildRef) (*PipelineReport, error) {
	out := s.jenkins.Execute(ctx, ref.Address(jenkins.WorkflowDescribe), http.MethodGet, nil)
	if !out.OK() {
		s.logger.WithFields(logrus.Fields{
			"build":  ref.String(),
			"status": out.Status,
		}).Infoln("pipeline api not available, using console log")

		console, err := s.ConsoleLog(ctx, ref, NoTail)
		if err != nil {
			return nil, err
		}

		return &PipelineReport{Build: ref, Fallback: true, Console: console}, nil
	}

	var run jenkins.WorkflowRun
	if err := jenkins.Decode(out, &run); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	report := &PipelineReport{
		Build:    ref,
		Name:     run.Name,
		Status:   run.Status,
		Duration: millisToSeconds(run.DurationMillis),
		Stages:   make([]Stage, 0, len(run.Stages)),
	}

	for _, st := range run.Stages {
		report.Stages = append(report.Stages, Stage{
			Name:     st.Name,
			Status:   StageStatus(st.Status),
			Duration: millisToSeconds(st.DurationMillis),
		})
	}

	return report, nil
}
