package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ihippik/jenkins-cli/config"
	"github.com/ihippik/jenkins-cli/jenkins"
	"github.com/ihippik/jenkins-cli/render"
	"github.com/ihippik/jenkins-cli/service"
)

// GITVersion contains the hash of the commit - set on build.
var GITVersion = "local"

const usageText = `Environment Variables:
   JENKINS_URL        Jenkins server URL (default: ` + config.DefaultURL + `)
   JENKINS_USER       Username for authentication
   JENKINS_TOKEN      API token or password
   JENKINS_TIMEOUT    Request timeout, e.g. 30s (default: 30s)
   JENKINS_LOG_LEVEL  debug, info, warn or error (default: warn)`

func main() {
	var (
		cfg    *config.Config
		client *jenkins.Client
		srv    *service.Service
		out    *render.Renderer
	)

	app := &cli.App{
		Name:                      "jenkins-cli",
		Usage:                     "query and control a Jenkins server",
		Description:               usageText,
		Version:                   GITVersion,
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "jenkins-cli.yml"},
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
		},
		Before: func(c *cli.Context) error {
			var err error

			cfg, err = config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("init config: %w", err)
			}

			logger := initLogger(cfg.Logger, GITVersion)
			client = jenkins.NewClient(logger, cfg.Jenkins)
			srv = service.NewService(logger, client)
			out = render.New(c.App.Writer, c.Bool("json"))

			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list jobs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "folder to list, e.g. team/sub"},
				},
				Action: func(c *cli.Context) error {
					var folder jenkins.JobPath

					if name := c.String("folder"); name != "" {
						var err error

						if folder, err = jenkins.ParseJobPath(name); err != nil {
							return fmt.Errorf("folder: %w", err)
						}
					}

					jobs, err := srv.ListJobs(c.Context, folder)
					if err != nil {
						return err
					}

					return out.Jobs(jobs)
				},
			},
			{
				Name:      "info",
				Usage:     "show job information",
				ArgsUsage: "JOB",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}

					job, err := jobArg(c, 0)
					if err != nil {
						return err
					}

					detail, err := srv.JobInfo(c.Context, job)
					if err != nil {
						return err
					}

					return out.Job(detail)
				},
			},
			{
				Name:      "build-info",
				Usage:     "show build information",
				ArgsUsage: "JOB BUILD",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 2); err != nil {
						return err
					}

					ref, err := buildArg(c)
					if err != nil {
						return err
					}

					detail, err := srv.BuildInfo(c.Context, ref)
					if err != nil {
						return err
					}

					return out.Build(detail)
				},
			},
			{
				Name:      "log",
				Usage:     "show the console log of a build",
				ArgsUsage: "JOB BUILD",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "tail", Aliases: []string{"t"}, Usage: "show only the last N lines"},
				},
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 2); err != nil {
						return err
					}

					ref, err := buildArg(c)
					if err != nil {
						return err
					}

					tail := service.NoTail
					if c.IsSet("tail") {
						if tail = c.Int("tail"); tail < 0 {
							return fmt.Errorf("tail: must not be negative: %d", tail)
						}
					}

					text, err := srv.ConsoleLog(c.Context, ref, tail)
					if err != nil {
						return err
					}

					return out.Console(text)
				},
			},
			{
				Name:      "pipeline",
				Usage:     "show pipeline stages and status",
				ArgsUsage: "JOB BUILD",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 2); err != nil {
						return err
					}

					ref, err := buildArg(c)
					if err != nil {
						return err
					}

					report, err := srv.PipelineStages(c.Context, ref)
					if err != nil {
						return err
					}

					return out.Pipeline(report)
				},
			},
			{
				Name:      "start",
				Usage:     "start a new build",
				ArgsUsage: "JOB",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "build parameter KEY=VALUE"},
				},
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}

					job, err := jobArg(c, 0)
					if err != nil {
						return err
					}

					res, err := srv.TriggerBuild(c.Context, job, service.ParseParams(c.StringSlice("param")))
					if err != nil {
						return err
					}

					return out.Trigger(res)
				},
			},
			{
				Name:      "stop",
				Usage:     "stop a running build",
				ArgsUsage: "JOB BUILD",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 2); err != nil {
						return err
					}

					ref, err := buildArg(c)
					if err != nil {
						return err
					}

					if err := srv.StopBuild(c.Context, ref); err != nil {
						return err
					}

					return out.Stopped(ref)
				},
			},
			{
				Name:  "queue",
				Usage: "show the build queue",
				Action: func(c *cli.Context) error {
					items, err := srv.Queue(c.Context)
					if err != nil {
						return err
					}

					return out.Queue(items)
				},
			},
			{
				Name:  "check",
				Usage: "check connection and credentials",
				Action: func(c *cli.Context) error {
					info, err := srv.Check(c.Context, client.BaseURL())
					if err != nil {
						return fmt.Errorf("check %s: %w", client.BaseURL(), err)
					}

					return out.Check(info)
				},
			},
			{
				Name:      "status",
				Usage:     "show the last build of several jobs",
				ArgsUsage: "JOB...",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: service.DefaultWorkers, Usage: "parallel requests"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return fmt.Errorf("%s: expected %s", c.Command.Name, c.Command.ArgsUsage)
					}

					jobs := make([]jenkins.JobPath, 0, c.NArg())

					for i := 0; i < c.NArg(); i++ {
						job, err := jobArg(c, i)
						if err != nil {
							return err
						}

						jobs = append(jobs, job)
					}

					rows := srv.BatchStatus(c.Context, jobs, c.Int("workers"))
					if err := out.Statuses(rows); err != nil {
						return err
					}

					if n := failed(rows); n > 0 {
						return fmt.Errorf("%d of %d jobs failed", n, len(rows))
					}

					return nil
				},
			},
		},
	}

	commands := make(map[string]bool, len(app.Commands))
	for _, cmd := range app.Commands {
		commands[cmd.Name] = true
	}

	if err := app.RunContext(context.Background(), hoistFlags(os.Args, commands)); err != nil {
		logrus.Fatalln(err)
	}
}

func failed(rows []service.JobStatus) int {
	var n int

	for _, row := range rows {
		if row.Err != nil {
			n++
		}
	}

	return n
}
