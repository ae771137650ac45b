package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	core "hpcjob.io/core"
)

type ScriptCommand struct {
	Help      bool     `short:"h" long:"help" description:"Show this help message"`
	Scheduler string   `long:"scheduler" description:"directive dialect (default: the cluster's scheduler)" choice:"slurm" choice:"sge"`
	Out       string   `long:"out" description:"write the script to this file instead of standard output"`
	Job       JobFlags `group:"Job Options"`
	Args      struct {
		Command []string `positional-arg-name:"jobscript" description:"job script | command [args...]"`
	} `positional-args:"true"`
}

var scriptCommand ScriptCommand

func (x *ScriptCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	_, cluster, err := loadCluster(x.Job.Cluster)
	if err != nil {
		return errors.Wrap(err, "script")
	}
	kind := x.Scheduler
	if len(kind) == 0 {
		kind = cluster.Scheduler
	}
	spec, err := buildJobSpec(kind, cluster, x.Job, append(x.Args.Command, args...))
	if err != nil {
		return errors.Wrap(err, "script")
	}
	sched, err := newScheduler(kind)
	if err != nil {
		return errors.Wrap(err, "script")
	}
	script, err := sched.Render(spec)
	if err != nil {
		return err
	}
	if len(x.Out) == 0 {
		_, err = stdout.Write(script)
		return err
	}
	if err := afero.WriteFile(appFs, x.Out, script, 0755); err != nil {
		return errors.Wrap(err, "script")
	}
	fmt.Fprintf(stdout, "Wrote %s script for %s to %s\n", sched.Name(), spec.Name, x.Out)
	return nil
}

func init() {
	parser.AddCommand("script",
		"Render a batch script",
		"Render the batch script for a job without submitting it",
		&scriptCommand)
}
