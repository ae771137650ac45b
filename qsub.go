package main

import (
	core "hpcjob.io/core"
)

type QSubCommand struct {
	Help   bool     `short:"h" long:"help" description:"Show this help message"`
	DryRun bool     `long:"dry-run" description:"print the batch script instead of submitting it"`
	Job    JobFlags `group:"Job Options"`
	Args   struct {
		Command []string `positional-arg-name:"jobscript" description:"job script | command [args...]"`
	} `positional-args:"true"`
}

var qSubCommand QSubCommand

func (x *QSubCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	return submitCommandLine("qsub", core.SchedulerSGE, x.Job, x.DryRun,
		append(x.Args.Command, args...), nil)
}

func init() {
	parser.AddCommand("qsub",
		"SGE qsub",
		"Submit a batch script, or a command with its arguments, to Grid Engine",
		&qSubCommand)
}
