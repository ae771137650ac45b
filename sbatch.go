package main

import (
	"context"

	core "hpcjob.io/core"
	"hpcjob.io/slurm"
)

type SBatchCommand struct {
	Help      bool     `short:"h" long:"help" description:"Show this help message"`
	DryRun    bool     `long:"dry-run" description:"print the batch script instead of submitting it"`
	CheckTime bool     `long:"check-time" description:"refuse jobs whose time limit exceeds the partition limit reported by sinfo"`
	Job       JobFlags `group:"Job Options"`
	Args      struct {
		Command []string `positional-arg-name:"jobscript" description:"job script | command [args...]"`
	} `positional-args:"true"`
}

var sBatchCommand SBatchCommand

func checkPartitionTime(ctx context.Context, spec core.JobSpec) error {
	partitions, err := slurm.New(executor).Partitions(ctx)
	if err != nil {
		return err
	}
	return slurm.CheckTimeLimit(spec, partitions)
}

func (x *SBatchCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	var check func(context.Context, core.JobSpec) error
	if x.CheckTime {
		check = checkPartitionTime
	}
	return submitCommandLine("sbatch", core.SchedulerSlurm, x.Job, x.DryRun,
		append(x.Args.Command, args...), check)
}

func init() {
	parser.AddCommand("sbatch",
		"Slurm sbatch",
		"Submit a batch script, or a command with its arguments, to Slurm",
		&sBatchCommand)
}
