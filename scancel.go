package main

import (
	"github.com/hashicorp/go-multierror"

	core "hpcjob.io/core"
)

type SCancelCommand struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
	Args struct {
		JobIDs []string `positional-arg-name:"jobid" description:"job id"`
	} `positional-args:"true" required:"1"`
}

type QDelCommand struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
	Args struct {
		JobIDs []string `positional-arg-name:"jobid" description:"job id"`
	} `positional-args:"true" required:"1"`
}

var sCancelCommand SCancelCommand
var qDelCommand QDelCommand

// cancelJobs tries every id and reports all failures.
func cancelJobs(kind string, jobIDs []string) error {
	sched, err := newScheduler(kind)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	var result *multierror.Error
	for _, id := range jobIDs {
		if err := sched.Cancel(ctx, id); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (x *SCancelCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	return cancelJobs(core.SchedulerSlurm, append(x.Args.JobIDs, args...))
}

func (x *QDelCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	return cancelJobs(core.SchedulerSGE, append(x.Args.JobIDs, args...))
}

func init() {
	parser.AddCommand("scancel",
		"Slurm scancel",
		"Used to signal jobs or job steps that are under the control of Slurm",
		&sCancelCommand)
	parser.AddCommand("qdel",
		"SGE qdel",
		"Delete Grid Engine jobs",
		&qDelCommand)
}
