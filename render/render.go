// Package render prints service results for humans or as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ihippik/jenkins-cli/jenkins"
	"github.com/ihippik/jenkins-cli/service"
)

// FallbackNotice precedes the console log when a build has no stage view.
const FallbackNotice = "Note: Pipeline API not available, showing console log instead."

const (
	building      = "BUILDING"
	noDescription = "No description"
	notAvailable  = "N/A"
	unknown       = "Unknown"
)

var colorStatus = map[string]string{
	"blue":          "Stable",
	"blue_anime":    "Building",
	"red":           "Failed",
	"red_anime":     "Building",
	"yellow":        "Unstable",
	"yellow_anime":  "Building",
	"grey":          "Pending",
	"grey_anime":    "Building",
	"aborted":       "Aborted",
	"aborted_anime": "Building",
	"disabled":      "Disabled",
	"notbuilt":      "Not Built",
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Renderer writes results to w.
type Renderer struct {
	w      io.Writer
	asJSON bool
}

// New create new Renderer; asJSON switches every method to indented JSON output.
func New(w io.Writer, asJSON bool) *Renderer {
	return &Renderer{w: w, asJSON: asJSON}
}

// JobStatus maps a job color to a readable status; unknown colors are shown as they are.
func JobStatus(color string) string {
	if color == "" {
		color = "notbuilt"
	}

	if s, ok := colorStatus[color]; ok {
		return s
	}

	return color
}

// Result returns the build result, or BUILDING while it has none.
func Result(result string) string {
	if result == "" {
		return building
	}

	return result
}

// Duration formats milliseconds as "Xm Ys".
func Duration(ms int64) string {
	return Seconds(ms / 1000)
}

// Seconds formats whole seconds as "Xm Ys".
func Seconds(secs int64) string {
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// Jobs prints a job listing.
func (r *Renderer) Jobs(jobs []jenkins.JobEntry) error {
	if r.asJSON {
		return r.json(jobs)
	}

	if len(jobs) == 0 {
		return r.println("No jobs found.")
	}

	rows := make([][]string, 0, len(jobs))

	for _, job := range jobs {
		number, result := "-", notAvailable
		if job.LastBuild != nil {
			number = strconv.Itoa(job.LastBuild.Number)
			result = Result(job.LastBuild.Result)
		}

		rows = append(rows, []string{orDefault(job.Name, unknown), JobStatus(job.Color), number, result})
	}

	return r.table([]string{"Job Name", "Status", "Last Build", "Result"}, rows)
}

// Job prints job details.
func (r *Renderer) Job(job *service.JobDetail) error {
	if r.asJSON {
		return r.json(job)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Job: %s\n", orDefault(job.Name, job.Path.Name()))
	fmt.Fprintf(&b, "Description: %s\n", orDefault(job.Description, noDescription))
	fmt.Fprintf(&b, "Buildable: %t\n", job.Buildable)

	next := notAvailable
	if job.NextBuildNumber != nil {
		next = strconv.Itoa(*job.NextBuildNumber)
	}

	fmt.Fprintf(&b, "Next Build Number: %s\n", next)

	if len(job.HealthReport) > 0 {
		b.WriteString("\nHealth Reports:\n")

		for _, h := range job.HealthReport {
			score := notAvailable
			if h.Score != nil {
				score = strconv.Itoa(*h.Score)
			}

			fmt.Fprintf(&b, "  - %s (Score: %s)\n", orDefault(h.Description, notAvailable), score)
		}
	}

	if lb := job.LastBuild; lb != nil {
		fmt.Fprintf(&b, "\nLast Build: #%d\n", lb.Number)
		fmt.Fprintf(&b, "  Result: %s\n", Result(lb.Result))
		fmt.Fprintf(&b, "  Duration: %s\n", Duration(lb.Duration))
	}

	if job.LastSuccessfulBuild != nil {
		fmt.Fprintf(&b, "Last Successful Build: #%d\n", job.LastSuccessfulBuild.Number)
	}

	if job.LastFailedBuild != nil {
		fmt.Fprintf(&b, "Last Failed Build: #%d\n", job.LastFailedBuild.Number)
	}

	return r.print(b.String())
}

// Build prints build details.
func (r *Renderer) Build(build *service.BuildDetail) error {
	if r.asJSON {
		return r.json(build)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Build: %s\n", orDefault(build.FullDisplayName, build.Ref.String()))
	fmt.Fprintf(&b, "Result: %s\n", Result(build.Result))
	fmt.Fprintf(&b, "Building: %t\n", build.Building)
	fmt.Fprintf(&b, "Duration: %s\n", Duration(build.Duration))
	fmt.Fprintf(&b, "URL: %s\n", orDefault(build.URL, notAvailable))

	var changes []string

	for _, cs := range build.ChangeSets {
		for _, item := range cs.Items {
			author := unknown
			if item.Author != nil && item.Author.FullName != "" {
				author = item.Author.FullName
			}

			changes = append(changes, fmt.Sprintf("  - %s (%s)", truncate(orDefault(item.Msg, "No message"), 60), author))
		}
	}

	if len(changes) > 0 {
		b.WriteString("\nChanges:\n")
		b.WriteString(strings.Join(changes, "\n"))
		b.WriteString("\n")
	}

	if params := build.Parameters(); len(params) > 0 {
		b.WriteString("\nParameters:\n")

		for _, p := range params {
			fmt.Fprintf(&b, "  %s: %v\n", p.Name, p.Value)
		}
	}

	return r.print(b.String())
}

// Console prints a console log as it is.
func (r *Renderer) Console(text string) error {
	if r.asJSON {
		return r.json(struct {
			Console string `json:"console"`
		}{text})
	}

	return r.println(text)
}

// Pipeline prints stage information or, after a fallback, the notice and console log.
func (r *Renderer) Pipeline(report *service.PipelineReport) error {
	if r.asJSON {
		return r.json(report)
	}

	if report.Fallback {
		return r.print(FallbackNotice + "\n\n" + report.Console + "\n")
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Pipeline: %s\n", orDefault(report.Name, report.Build.Job.Name()))
	fmt.Fprintf(&b, "Status: %s\n", orDefault(report.Status, "UNKNOWN"))
	fmt.Fprintf(&b, "Duration: %s\n", Seconds(report.Duration))

	if err := r.print(b.String()); err != nil {
		return err
	}

	if len(report.Stages) == 0 {
		return nil
	}

	if err := r.print(fmt.Sprintf("\nStages (%d):\n", len(report.Stages))); err != nil {
		return err
	}

	rows := make([][]string, 0, len(report.Stages))
	for _, st := range report.Stages {
		rows = append(rows, []string{
			orDefault(st.Name, unknown),
			orDefault(string(st.Status), "UNKNOWN"),
			fmt.Sprintf("%ds", st.Duration),
		})
	}

	return r.table([]string{"Stage", "Status", "Duration"}, rows)
}

// Trigger prints the result of starting a build.
func (r *Renderer) Trigger(res *service.TriggerResult) error {
	if r.asJSON {
		return r.json(res)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Build started successfully for job: %s\n", res.Job)

	if !res.Correlated() {
		return r.print(b.String())
	}

	switch {
	case res.Queued != nil:
		fmt.Fprintf(&b, "Queue ID: %d\n", res.Queued.ID)

		if res.Queued.Why != "" {
			fmt.Fprintf(&b, "Status: %s\n", res.Queued.Why)
		}
	default:
		fmt.Fprintf(&b, "Last build number: #%d\n", res.Build)
	}

	return r.print(b.String())
}

// Stopped confirms a stop request.
func (r *Renderer) Stopped(ref jenkins.BuildRef) error {
	if r.asJSON {
		return r.json(struct {
			Job     string `json:"job"`
			Build   string `json:"build"`
			Stopped bool   `json:"stopped"`
		}{ref.Job.String(), ref.Build, true})
	}

	return r.println(fmt.Sprintf("Build #%s stopped for job: %s", ref.Build, ref.Job))
}

// Queue prints the build queue.
func (r *Renderer) Queue(items []jenkins.QueueItem) error {
	if r.asJSON {
		return r.json(items)
	}

	if len(items) == 0 {
		return r.println("Build queue is empty.")
	}

	rows := make([][]string, 0, len(items))

	for _, item := range items {
		name := unknown
		if item.Task != nil && item.Task.Name != "" {
			name = item.Task.Name
		}

		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			name,
			truncate(orDefault(item.Why, notAvailable), 40),
		})
	}

	return r.table([]string{"ID", "Job", "Why"}, rows)
}

// Check prints the connectivity report.
func (r *Renderer) Check(info *service.ServerInfo) error {
	if r.asJSON {
		return r.json(info)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Connected to Jenkins at %s\n", info.URL)

	if info.Parsed {
		fmt.Fprintf(&b, "Mode: %s\n", orDefault(info.Mode, unknown))
		fmt.Fprintf(&b, "Description: %s\n", orDefault(info.NodeDescription, notAvailable))
		fmt.Fprintf(&b, "Security Enabled: %t\n", info.UseSecurity)
	}

	return r.print(b.String())
}

// Statuses prints a batch status table. Failed rows show their error in place of a result.
func (r *Renderer) Statuses(rows []service.JobStatus) error {
	if r.asJSON {
		return r.json(rows)
	}

	cells := make([][]string, 0, len(rows))

	for _, row := range rows {
		if row.Err != nil {
			cells = append(cells, []string{row.Job.String(), "Error", "-", truncate(row.Err.Error(), 60)})
			continue
		}

		status := JobStatus(row.Color)
		if row.InQueue {
			status += " (queued)"
		}

		number, result := "-", notAvailable
		if row.LastBuild != nil {
			number = strconv.Itoa(row.LastBuild.Number)
			result = Result(row.LastBuild.Result)
		}

		cells = append(cells, []string{row.Job.String(), status, number, result})
	}

	return r.table([]string{"Job", "Status", "Last Build", "Result"}, cells)
}

func (r *Renderer) table(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			// the header is row 0, data rows start at 1
			if row == 0 {
				return headerStyle
			}

			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return r.println(t.String())
}

func (r *Renderer) json(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func (r *Renderer) print(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}

func (r *Renderer) println(s string) error {
	return r.print(s + "\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
