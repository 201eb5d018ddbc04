package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ihippik/jenkins-cli/config"
	"github.com/ihippik/jenkins-cli/jenkins"
)

// initLogger init logrus logger with specified fields and log level.
func initLogger(cfg *config.LoggerCfg, version string) *logrus.Entry {
	logger := logrus.New()

	switch cfg.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}

	return logger.WithFields(logrus.Fields{"version": version})
}

// requireArgs checks the number of positional arguments of the current command.
func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%s: expected %s", c.Command.Name, c.Command.ArgsUsage)
	}

	return nil
}

func jobArg(c *cli.Context, i int) (jenkins.JobPath, error) {
	job, err := jenkins.ParseJobPath(c.Args().Get(i))
	if err != nil {
		return nil, fmt.Errorf("job: %w", err)
	}

	return job, nil
}

func buildArg(c *cli.Context) (jenkins.BuildRef, error) {
	job, err := jobArg(c, 0)
	if err != nil {
		return jenkins.BuildRef{}, err
	}

	return jenkins.ParseBuildRef(job, c.Args().Get(1))
}

// valueFlags lists command flags that consume the next argument.
var valueFlags = map[string]bool{
	"--folder": true, "-f": true,
	"--tail": true, "-t": true,
	"--param": true, "-p": true,
	"--workers": true, "-w": true,
}

// globalFlags lists app-level flags; true marks flags that consume the next argument.
var globalFlags = map[string]bool{
	"--json":   false,
	"--config": true, "-c": true,
}

// hoistFlags moves command flags written after positional arguments in front of them,
// so "log app 42 --tail 50" parses like "log --tail 50 app 42". App-level flags found
// there go in front of the command. Arguments after "--" are left alone.
func hoistFlags(args []string, commands map[string]bool) []string {
	cmdIdx := -1

	for i := 1; i < len(args); i++ {
		if commands[args[i]] {
			cmdIdx = i
			break
		}
	}

	if cmdIdx < 0 {
		return args
	}

	var global, flags, positional []string

	rest := args[cmdIdx+1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		name, _, inline := strings.Cut(arg, "=")

		if valued, ok := globalFlags[name]; ok {
			global = append(global, arg)

			if valued && !inline && i+1 < len(rest) {
				global = append(global, rest[i+1])
				i++
			}

			continue
		}

		switch {
		case arg == "--":
			positional = append(positional, rest[i:]...)
			i = len(rest)
		case len(arg) > 1 && arg[0] == '-':
			flags = append(flags, arg)

			if valueFlags[arg] && i+1 < len(rest) {
				flags = append(flags, rest[i+1])
				i++
			}
		default:
			positional = append(positional, arg)
		}
	}

	out := make([]string, 0, len(args))
	out = append(out, args[:cmdIdx]...)
	out = append(out, global...)
	out = append(out, args[cmdIdx])
	out = append(out, flags...)

	return append(out, positional...)
}
