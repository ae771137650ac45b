package main

import (
	core "hpcjob.io/core"
	"hpcjob.io/sge"
)

type QStatCommand struct {
	Help bool   `short:"h" long:"help" description:"Show this help message"`
	User string `short:"u" long:"user" description:"only show jobs of this user"`
}

var qStatCommand QStatCommand

func (x *QStatCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	ctx, cancel := commandContext()
	defer cancel()
	jobs, err := sge.New(executor).Queue(ctx, x.User)
	if err != nil {
		return err
	}
	core.PrintTable(stdout, sge.QueueTable(jobs), false)
	return nil
}

func init() {
	parser.AddCommand("qstat",
		"SGE qstat",
		"show the status of Grid Engine jobs",
		&qStatCommand)
}
