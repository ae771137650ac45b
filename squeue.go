package main

import (
	core "hpcjob.io/core"
	"hpcjob.io/slurm"
)

type SQueueCommand struct {
	Help bool   `short:"h" long:"help" description:"Show this help message"`
	User string `short:"u" long:"user" description:"only show jobs of this user"`
}

type SInfoCommand struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

var sQueueCommand SQueueCommand
var sInfoCommand SInfoCommand

func (x *SQueueCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	ctx, cancel := commandContext()
	defer cancel()
	jobs, err := slurm.New(executor).Queue(ctx, x.User)
	if err != nil {
		return err
	}
	core.PrintTable(stdout, slurm.QueueTable(jobs), false)
	return nil
}

func (x *SInfoCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	ctx, cancel := commandContext()
	defer cancel()
	partitions, err := slurm.New(executor).Partitions(ctx)
	if err != nil {
		return err
	}
	core.PrintTable(stdout, slurm.PartitionTable(partitions), false)
	return nil
}

func init() {
	parser.AddCommand("squeue",
		"Slurm squeue",
		"view information about jobs located in the Slurm scheduling queue",
		&sQueueCommand)
	parser.AddCommand("sinfo",
		"Slurm sinfo",
		"View information about Slurm nodes and partitions.",
		&sInfoCommand)
}
