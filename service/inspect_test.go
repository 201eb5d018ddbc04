package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ihippik/jenkins-cli/jenkins"
)

func newTestService(t *testing.T) (*Service, *JenkinsAPIMock) {
	t.Helper()

	api := new(JenkinsAPIMock)
	t.Cleanup(func() { api.AssertExpectations(t) })

	logger, _ := test.NewNullLogger()

	return NewService(logrus.NewEntry(logger), api), api
}

func TestService_ListJobs(t *testing.T) {
	const tree = "api/json?tree=jobs[name,color,url,lastBuild[number,result,timestamp]]"

	t.Run("root", func(t *testing.T) {
		s, api := newTestService(t)
		api.On("Execute", mock.Anything, tree, "GET", noForm).Return(jenkins.Outcome{
			Status: 200,
			Body:   `{"jobs":[{"name":"app","color":"blue","lastBuild":{"number":3,"result":null}},{"name":"new","color":"notbuilt","lastBuild":null}]}`,
		}).Once()

		got, err := s.ListJobs(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "app", got[0].Name)
		assert.Equal(t, &jenkins.BuildSummary{Number: 3}, got[0].LastBuild)
		assert.Nil(t, got[1].LastBuild)
	})

	t.Run("nested folder", func(t *testing.T) {
		s, api := newTestService(t)
		api.On("Execute", mock.Anything, "job/team/job/sub%20dir/"+tree, "GET", noForm).
			Return(jenkins.Outcome{Status: 200, Body: `{"jobs":[]}`}).Once()

		got, err := s.ListJobs(context.Background(), jenkins.JobPath{"team", "sub dir"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("not json", func(t *testing.T) {
		s, api := newTestService(t)
		api.On("Execute", mock.Anything, tree, "GET", noForm).
			Return(jenkins.Outcome{Status: 200, Body: "<html>login</html>"}).Once()

		_, err := s.ListJobs(context.Background(), nil)
		assert.EqualError(t, err, "list jobs: invalid JSON response: <html>login</html>")

		var payloadErr *jenkins.PayloadError
		assert.True(t, errors.As(err, &payloadErr))
	})

	t.Run("unreachable", func(t *testing.T) {
		s, api := newTestService(t)
		api.On("Execute", mock.Anything, tree, "GET", noForm).
			Return(jenkins.Outcome{Status: 0, Body: "Connection error: refused"}).Once()

		_, err := s.ListJobs(context.Background(), nil)
		assert.EqualError(t, err, "list jobs: cannot connect to Jenkins: Connection error: refused")
	})
}

func TestService_JobInfo(t *testing.T) {
	s, api := newTestService(t)

	api.On("Execute", mock.Anything, "job/app/api/json?tree="+jenkins.JobInfoTree, "GET", noForm).Return(jenkins.Outcome{
		Status: 200,
		Body: `{
			"name": "app",
			"description": null,
			"buildable": true,
			"nextBuildNumber": 12,
			"healthReport": [{"description": "Build stability: No recent builds failed.", "score": 100}],
			"lastBuild": {"number": 11, "result": "SUCCESS", "duration": 61000},
			"lastSuccessfulBuild": {"number": 11},
			"lastFailedBuild": null
		}`,
	}).Once()

	got, err := s.JobInfo(context.Background(), jenkins.JobPath{"app"})
	require.NoError(t, err)

	assert.Equal(t, jenkins.JobPath{"app"}, got.Path)
	assert.Empty(t, got.Description)
	assert.True(t, got.Buildable)
	require.NotNil(t, got.NextBuildNumber)
	assert.Equal(t, 12, *got.NextBuildNumber)
	require.Len(t, got.HealthReport, 1)
	assert.Equal(t, 11, got.LastSuccessfulBuild.Number)
	assert.Nil(t, got.LastFailedBuild)
}

func TestService_BuildInfo(t *testing.T) {
	s, api := newTestService(t)
	ref := jenkins.BuildRef{Job: jenkins.JobPath{"team", "app"}, Build: "42"}

	api.On("Execute", mock.Anything, "job/team/job/app/42/api/json?tree="+jenkins.BuildInfoTree, "GET", noForm).Return(jenkins.Outcome{
		Status: 200,
		Body: `{
			"fullDisplayName": "team » app #42",
			"result": null,
			"building": true,
			"changeSets": [{"items": [{"msg": "fix", "author": {"fullName": "Ann"}}]}],
			"actions": [{"_class": "hudson.model.ParametersAction", "parameters": [{"name": "DRY", "value": true}]}]
		}`,
	}).Once()

	got, err := s.BuildInfo(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, ref, got.Ref)
	assert.True(t, got.Building)
	assert.Empty(t, got.Result)
	assert.Equal(t, []jenkins.Parameter{{Name: "DRY", Value: true}}, got.Parameters())
	assert.Equal(t, "Ann", got.ChangeSets[0].Items[0].Author.FullName)
}

func TestService_StopBuild(t *testing.T) {
	ref := jenkins.BuildRef{Job: jenkins.JobPath{"app"}, Build: "5"}

	tests := []struct {
		name    string
		out     jenkins.Outcome
		wantErr string
	}{
		{name: "ok", out: jenkins.Outcome{Status: 200}},
		{name: "redirect", out: jenkins.Outcome{Status: 302}},
		{name: "created is not enough", out: jenkins.Outcome{Status: 201, Body: "?"}, wantErr: "stop build: Error (201): ?"},
		{name: "forbidden", out: jenkins.Outcome{Status: 403}, wantErr: "stop build: access forbidden: check your Jenkins credentials and permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, api := newTestService(t)
			api.On("Execute", mock.Anything, "job/app/5/stop", "POST", noForm).Return(tt.out).Once()

			err := s.StopBuild(context.Background(), ref)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Queue(t *testing.T) {
	s, api := newTestService(t)

	api.On("Execute", mock.Anything, "queue/api/json?tree=items[id,why,task[name]]", "GET", noForm).Return(jenkins.Outcome{
		Status: 200,
		Body:   `{"items":[{"id":57,"why":"Waiting for next available executor","task":{"name":"app"}},{"id":58}]}`,
	}).Once()

	got, err := s.Queue(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(57), got[0].ID)
	assert.Equal(t, "app", got[0].Task.Name)
	assert.Nil(t, got[1].Task)
}

func TestService_Check(t *testing.T) {
	const path = "api/json?tree=mode,nodeDescription,useSecurity"

	t.Run("connected", func(t *testing.T) {
		s, api := newTestService(t)
		api.On("Execute", mock.Anything, path, "GET", noForm).Return(jenkins.Outcome{
			Status: 200,
			Body:   `{"mode":"NORMAL","nodeDescription":"the master Jenkins node","useSecurity":true}`,
		}).Once()

		got, err := s.Check(context.Background(), "http://ci")
		require.NoError(t, err)
		assert.Equal(t, &ServerInfo{
			URL:    "http://ci",
			Parsed: true,
			Server: jenkins.Server{Mode: "NORMAL", NodeDescription: "the master Jenkins node", UseSecurity: true},
		}, got)
	})

	t.Run("connected without json", func(t *testing.T) {
		s, api := newTestService(t)
		api.On("Execute", mock.Anything, path, "GET", noForm).Return(jenkins.Outcome{Status: 200, Body: "hi"}).Once()

		got, err := s.Check(context.Background(), "http://ci")
		require.NoError(t, err)
		assert.False(t, got.Parsed)
	})

	for _, status := range []int{0, 401, 403, 502} {
		s, api := newTestService(t)
		api.On("Execute", mock.Anything, path, "GET", noForm).Return(jenkins.Outcome{Status: status}).Once()

		_, err := s.Check(context.Background(), "http://ci")

		var statusErr *jenkins.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, jenkins.Classify(status), statusErr.Category())
	}
}
