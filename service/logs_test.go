package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ihippik/jenkins-cli/jenkins"
)

func TestTail(t *testing.T) {
	const log = "one\ntwo\nthree\nfour"

	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{name: "last two", text: log, n: 2, want: "three\nfour"},
		{name: "last one", text: log, n: 1, want: "four"},
		{name: "exactly all", text: log, n: 4, want: log},
		{name: "more than all", text: log, n: 100, want: log},
		{name: "zero", text: log, n: 0, want: ""},
		{name: "trailing newline kept", text: log + "\n", n: 2, want: "three\nfour\n"},
		{name: "trailing newline all", text: log + "\n", n: 4, want: log + "\n"},
		{name: "blank lines count", text: "a\n\nb", n: 2, want: "\nb"},
		{name: "crlf untouched", text: "a\r\nb\r\nc\r\n", n: 2, want: "b\r\nc\r\n"},
		{name: "empty", text: "", n: 3, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tail(tt.text, tt.n))
		})
	}
}

func TestTail_suffixOfOriginal(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = strings.Repeat("x", i)
	}

	text := strings.Join(lines, "\n")

	for k := 1; k <= len(lines); k++ {
		got := Tail(text, k)
		assert.True(t, strings.HasSuffix(text, got))
		assert.Equal(t, k, len(strings.Split(got, "\n")))
	}
}

func TestService_ConsoleLog(t *testing.T) {
	ref := jenkins.BuildRef{Job: jenkins.JobPath{"app"}, Build: "lastBuild"}
	logger, _ := test.NewNullLogger()

	t.Run("tail", func(t *testing.T) {
		api := new(JenkinsAPIMock)
		api.On("Execute", mock.Anything, "job/app/lastBuild/consoleText", "GET", noForm).
			Return(jenkins.Outcome{Status: 200, Body: "a\nb\nc\n"}).Once()
		defer api.AssertExpectations(t)

		got, err := NewService(logrus.NewEntry(logger), api).ConsoleLog(context.Background(), ref, 1)
		require.NoError(t, err)
		assert.Equal(t, "c\n", got)
	})

	t.Run("full", func(t *testing.T) {
		api := new(JenkinsAPIMock)
		api.On("Execute", mock.Anything, "job/app/lastBuild/consoleText", "GET", noForm).
			Return(jenkins.Outcome{Status: 200, Body: "a\nb\nc\n"}).Once()
		defer api.AssertExpectations(t)

		got, err := NewService(logrus.NewEntry(logger), api).ConsoleLog(context.Background(), ref, NoTail)
		require.NoError(t, err)
		assert.Equal(t, "a\nb\nc\n", got)
	})

	t.Run("missing build", func(t *testing.T) {
		api := new(JenkinsAPIMock)
		api.On("Execute", mock.Anything, "job/app/lastBuild/consoleText", "GET", noForm).
			Return(jenkins.Outcome{Status: 404, Body: "Not Found"}).Once()
		defer api.AssertExpectations(t)

		_, err := NewService(logrus.NewEntry(logger), api).ConsoleLog(context.Background(), ref, NoTail)
		assert.EqualError(t, err, "console log: Error (404): Not Found")

		var statusErr *jenkins.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, jenkins.CategoryResource, statusErr.Category())
	})
}

func TestService_PipelineStages(t *testing.T) {
	ref := jenkins.BuildRef{Job: jenkins.JobPath{"team", "app"}, Build: "7"}

	const (
		describePath = "job/team/job/app/7/wfapi/describe"
		consolePath  = "job/team/job/app/7/consoleText"
	)

	api := new(JenkinsAPIMock)
	setExecute := func(path string, out jenkins.Outcome) {
		api.On("Execute", mock.Anything, path, "GET", noForm).Return(out).Once()
	}

	tests := []struct {
		name    string
		setup   func()
		want    *PipelineReport
		wantErr error
	}{
		{
			name: "stages",
			setup: func() {
				setExecute(describePath, jenkins.Outcome{Status: 200, Body: `{
					"name": "#7",
					"status": "IN_PROGRESS",
					"durationMillis": 125999,
					"stages": [
						{"name": "Checkout", "status": "SUCCESS", "durationMillis": 1999},
						{"name": "Test", "status": "FAILED", "durationMillis": 61000},
						{"name": "Approve", "status": "PAUSED_FOR_HUMANS", "durationMillis": 0}
					]
				}`})
			},
			want: &PipelineReport{
				Build:    ref,
				Name:     "#7",
				Status:   "IN_PROGRESS",
				Duration: 125,
				Stages: []Stage{
					{Name: "Checkout", Status: StageSuccess, Duration: 1},
					{Name: "Test", Status: StageFailed, Duration: 61},
					{Name: "Approve", Status: "PAUSED_FOR_HUMANS", Duration: 0},
				},
			},
		},
		{
			name: "no stages",
			setup: func() {
				setExecute(describePath, jenkins.Outcome{Status: 200, Body: `{"name":"#7","status":"NOT_EXECUTED"}`})
			},
			want: &PipelineReport{
				Build:  ref,
				Name:   "#7",
				Status: "NOT_EXECUTED",
				Stages: []Stage{},
			},
		},
		{
			name: "not a pipeline",
			setup: func() {
				setExecute(describePath, jenkins.Outcome{Status: 404, Body: "Not Found"})
				setExecute(consolePath, jenkins.Outcome{Status: 200, Body: "Started by user\nFinished: SUCCESS\n"})
			},
			want: &PipelineReport{
				Build:    ref,
				Fallback: true,
				Console:  "Started by user\nFinished: SUCCESS\n",
			},
		},
		{
			name: "fallback console fails",
			setup: func() {
				setExecute(describePath, jenkins.Outcome{Status: 500, Body: "boom"})
				setExecute(consolePath, jenkins.Outcome{Status: 403})
			},
			wantErr: errors.New("console log: access forbidden: check your Jenkins credentials and permissions"),
		},
		{
			name: "malformed describe",
			setup: func() {
				setExecute(describePath, jenkins.Outcome{Status: 200, Body: "<html>"})
			},
			wantErr: errors.New("pipeline: invalid JSON response: <html>"),
		},
	}

	logger, _ := test.NewNullLogger()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer api.AssertExpectations(t)
			tt.setup()

			s := NewService(logrus.NewEntry(logger), api)

			got, err := s.PipelineStages(context.Background(), ref)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMillisToSeconds(t *testing.T) {
	assert.Equal(t, int64(0), millisToSeconds(999))
	assert.Equal(t, int64(1), millisToSeconds(1000))
	assert.Equal(t, int64(61), millisToSeconds(61999))
	assert.Equal(t, int64(-1), millisToSeconds(-1))
	assert.Equal(t, int64(-1), millisToSeconds(-1000))
}
