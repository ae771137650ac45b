package main

import (
	"fmt"

	"github.com/pkg/errors"

	core "hpcjob.io/core"
	logger "hpcjob.io/logger"
)

type SubmitCommand struct {
	Help    bool   `short:"h" long:"help" description:"Show this help message"`
	DryRun  bool   `long:"dry-run" description:"print the batch scripts instead of submitting them"`
	Cluster string `long:"cluster" description:"cluster profile (default: selected profile)"`
	Args    struct {
		JobFile string `positional-arg-name:"jobs.yaml" description:"YAML file listing jobs"`
	} `positional-args:"true" required:"1"`
}

var submitCommand SubmitCommand

// Execute submits every job of the file in order and stops at the first
// failure. Jobs already submitted stay submitted.
func (x *SubmitCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	clusterName, cluster, err := loadCluster(x.Cluster)
	if err != nil {
		return errors.Wrap(err, "submit")
	}
	specs, err := core.ReadJobFile(appFs, x.Args.JobFile)
	if err != nil {
		return errors.Wrap(err, "submit")
	}
	sched, err := newScheduler(cluster.Scheduler)
	if err != nil {
		return errors.Wrap(err, "submit")
	}
	logger.InfoPrintf("submit: %d jobs from %s to %s (%s)",
		len(specs), x.Args.JobFile, clusterName, sched.Name())

	ctx, cancel := commandContext()
	defer cancel()
	for i, spec := range specs {
		spec = spec.WithDefaults(cluster)
		if x.DryRun {
			script, err := sched.Render(spec)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			if _, err := stdout.Write(script); err != nil {
				return err
			}
			continue
		}
		sub, err := sched.Submit(ctx, spec)
		if err != nil {
			return errors.Wrapf(err, "submit: job %d (%s)", i, spec.Name)
		}
		fmt.Fprintln(stdout, submittedMessage(sub))
	}
	return nil
}

func init() {
	parser.AddCommand("submit",
		"Submit jobs from file",
		"Submit every job listed in a YAML jobs file to the cluster's scheduler",
		&submitCommand)
}
