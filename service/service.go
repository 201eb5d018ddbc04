// Package service is a main business layer: it turns user commands into Jenkins requests
// and interprets their outcomes.
package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/ihippik/jenkins-cli/jenkins"
)

// jenkinsAPI presents an interface for executing requests against the Jenkins API.
type jenkinsAPI interface {
	Execute(ctx context.Context, path, method string, form url.Values) jenkins.Outcome
}

// Service represent main service struct.
type Service struct {
	logger  *logrus.Entry
	jenkins jenkinsAPI
}

// NewService create new Service instance.
func NewService(logger *logrus.Entry, api jenkinsAPI) *Service {
	return &Service{logger: logger, jenkins: api}
}

// get fetches path and decodes a 200 response into v.
func (s *Service) get(ctx context.Context, path string, v interface{}) error {
	out := s.jenkins.Execute(ctx, path, http.MethodGet, nil)
	if !out.OK() {
		return out.Err()
	}

	return jenkins.Decode(out, v)
}

// millisToSeconds floors a millisecond duration to whole seconds.
func millisToSeconds(ms int64) int64 {
	secs := ms / 1000
	if ms%1000 != 0 && ms < 0 {
		secs--
	}

	return secs
}
