package jenkins

import "strings"

// Tree projections requested from the API.
const (
	JobListTree   = "jobs[name,color,url,lastBuild[number,result,timestamp]]"
	JobInfoTree   = "name,description,color,buildable,lastBuild[number,result,timestamp,duration],lastSuccessfulBuild[number],lastFailedBuild[number],nextBuildNumber,healthReport[description,score]"
	BuildInfoTree = "fullDisplayName,result,building,duration,url,changeSets[items[msg,author[fullName]]],actions[_class,parameters[name,value]]"
	QueueTree     = "items[id,why,task[name]]"
	TriggerTree   = "queueItem[id,why],lastBuild[number]"
	ServerTree    = "mode,nodeDescription,useSecurity"
	SummaryTree   = "name,color,inQueue,lastBuild[number,result,timestamp,duration]"
)

// Sub-resources.
const (
	APIJSON            = "api/json"
	ConsoleText        = "consoleText"
	WorkflowDescribe   = "wfapi/describe"
	BuildTrigger       = "build"
	BuildWithParameter = "buildWithParameters"
	StopBuild          = "stop"
	QueuePath          = "queue"
)

// parametersActionSuffix marks the build action that carries build parameters.
const parametersActionSuffix = "ParametersAction"

// Tree returns "api/json?tree=<tree>".
func Tree(tree string) string {
	return APIJSON + "?tree=" + tree
}

type (
	// BuildNumber is a build reference inside a job payload.
	BuildNumber struct {
		Number int `json:"number"`
	}

	// BuildSummary is the lastBuild object of job payloads.
	BuildSummary struct {
		Number    int    `json:"number"`
		Result    string `json:"result"`
		Timestamp int64  `json:"timestamp"`
		Duration  int64  `json:"duration"`
	}

	// JobEntry is one element of a jobs listing.
	JobEntry struct {
		Name      string        `json:"name"`
		Color     string        `json:"color"`
		URL       string        `json:"url"`
		LastBuild *BuildSummary `json:"lastBuild"`
	}

	// JobList is a folder or root listing.
	JobList struct {
		Jobs []JobEntry `json:"jobs"`
	}

	// HealthReport of a job.
	HealthReport struct {
		Description string `json:"description"`
		Score       *int   `json:"score"`
	}

	// Job is the detail payload of one job.
	Job struct {
		Name                string         `json:"name"`
		Description         string         `json:"description"`
		Color               string         `json:"color"`
		Buildable           bool           `json:"buildable"`
		InQueue             bool           `json:"inQueue"`
		NextBuildNumber     *int           `json:"nextBuildNumber"`
		HealthReport        []HealthReport `json:"healthReport"`
		LastBuild           *BuildSummary  `json:"lastBuild"`
		LastSuccessfulBuild *BuildNumber   `json:"lastSuccessfulBuild"`
		LastFailedBuild     *BuildNumber   `json:"lastFailedBuild"`
	}

	// Author of a change-set item.
	Author struct {
		FullName string `json:"fullName"`
	}

	// ChangeItem is one commit in a change set.
	ChangeItem struct {
		Msg    string  `json:"msg"`
		Author *Author `json:"author"`
	}

	// ChangeSet groups commits of one SCM.
	ChangeSet struct {
		Items []ChangeItem `json:"items"`
	}

	// Parameter is one build parameter. Values are not always strings.
	Parameter struct {
		Name  string      `json:"name"`
		Value interface{} `json:"value"`
	}

	// Action of a build. Only parameters actions are interpreted.
	Action struct {
		Class      string      `json:"_class"`
		Parameters []Parameter `json:"parameters"`
	}

	// Build is the detail payload of one build.
	Build struct {
		FullDisplayName string      `json:"fullDisplayName"`
		Result          string      `json:"result"`
		Building        bool        `json:"building"`
		Duration        int64       `json:"duration"`
		URL             string      `json:"url"`
		ChangeSets      []ChangeSet `json:"changeSets"`
		Actions         []Action    `json:"actions"`
	}

	// QueueTask is the job a queue item belongs to.
	QueueTask struct {
		Name string `json:"name"`
	}

	// QueueItem is one pending build request.
	QueueItem struct {
		ID   int64      `json:"id"`
		Why  string     `json:"why"`
		Task *QueueTask `json:"task"`
	}

	// Queue is the build queue payload.
	Queue struct {
		Items []QueueItem `json:"items"`
	}

	// TriggerState is the follow-up read issued after a trigger.
	TriggerState struct {
		QueueItem *QueueItem   `json:"queueItem"`
		LastBuild *BuildNumber `json:"lastBuild"`
	}

	// Server is the root payload used for connectivity checks.
	Server struct {
		Mode            string `json:"mode"`
		NodeDescription string `json:"nodeDescription"`
		UseSecurity     bool   `json:"useSecurity"`
	}

	// StageRun is one stage of a workflow run.
	StageRun struct {
		Name           string `json:"name"`
		Status         string `json:"status"`
		DurationMillis int64  `json:"durationMillis"`
	}

	// WorkflowRun is the wfapi/describe payload.
	WorkflowRun struct {
		Name           string     `json:"name"`
		Status         string     `json:"status"`
		DurationMillis int64      `json:"durationMillis"`
		Stages         []StageRun `json:"stages"`
	}
)

// Parameters collects the parameters of all parameters actions.
func (b *Build) Parameters() []Parameter {
	var params []Parameter

	for _, a := range b.Actions {
		if strings.HasSuffix(a.Class, parametersActionSuffix) {
			params = append(params, a.Parameters...)
		}
	}

	return params
}
