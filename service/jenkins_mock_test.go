package service

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"

	"github.com/ihippik/jenkins-cli/jenkins"
)

type JenkinsAPIMock struct {
	mock.Mock
}

func (j *JenkinsAPIMock) Execute(ctx context.Context, path, method string, form url.Values) jenkins.Outcome {
	args := j.Called(ctx, path, method, form)
	return args.Get(0).(jenkins.Outcome)
}

// noForm matches requests sent without a body.
var noForm = url.Values(nil)
