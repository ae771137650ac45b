package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	core "hpcjob.io/core"
	logger "hpcjob.io/logger"
	"hpcjob.io/sge"
	"hpcjob.io/slurm"
)

// JobFlags are the resource options shared by sbatch, qsub and script.
type JobFlags struct {
	Jobname   string `short:"J" long:"job-name" description:"Specify a name for the job allocation"`
	Time      string `short:"t" long:"time" description:"time limit days-hours:minutes:seconds"`
	Mem       string `long:"mem" description:"Specify the real memory required per node. Default units are megabytes. Different units can be specified using the suffix [K|M|G|T]"`
	Partition string `short:"p" long:"partition" description:"Request a specific partition for the resource allocation"`
	Account   string `short:"A" long:"account" description:"Charge resources used by this job to specified account"`
	Chdir     string `short:"D" long:"chdir" description:"working directory"`
	Output    string `short:"o" long:"output" description:"file for the job's standard output"`
	Error     string `short:"e" long:"error" description:"file for the job's standard error"`
	Python    bool   `long:"python" description:"run the first argument as a Python script with the cluster's interpreter (python -u)"`
	Cluster   string `long:"cluster" description:"cluster profile (default: selected profile)"`
}

func (f JobFlags) options() slurm.Options {
	return slurm.Options{
		JobName:   f.Jobname,
		Time:      f.Time,
		Mem:       f.Mem,
		Partition: f.Partition,
		Account:   f.Account,
		Chdir:     f.Chdir,
		Output:    f.Output,
		Error:     f.Error,
	}
}

func loadCluster(name string) (string, core.Cluster, error) {
	store, err := core.NewConfigStore(appFs)
	if err != nil {
		return "", core.Cluster{}, err
	}
	return store.Cluster(name)
}

func newScheduler(kind string) (core.Scheduler, error) {
	switch kind {
	case core.SchedulerSlurm:
		s := slurm.New(executor)
		s.LookPath = lookPath
		return s, nil
	case core.SchedulerSGE:
		s := sge.New(executor)
		s.LookPath = lookPath
		return s, nil
	}
	return nil, errors.Errorf("unsupported scheduler %q", kind)
}

// isJobScript reports whether the single positional argument names a batch
// script rather than a program.
func isJobScript(argv []string) bool {
	if len(argv) != 1 {
		return false
	}
	data, err := afero.ReadFile(appFs, argv[0])
	if err != nil {
		return false
	}
	return bytes.HasPrefix(data, []byte("#!"))
}

// buildJobSpec combines a job script (or a program and its arguments), the
// command line options and the cluster defaults. Command line options take
// precedence over script directives, which take precedence over the cluster.
// Scripts are read in the directive dialect of kind: #SBATCH or #$.
func buildJobSpec(kind string, cluster core.Cluster, jf JobFlags, argv []string) (core.JobSpec, error) {
	if len(argv) == 0 {
		return core.JobSpec{}, errors.New("missing job script or command")
	}
	var spec core.JobSpec
	opts := jf.options()
	defaultName := filepath.Base(argv[0])
	switch {
	case isJobScript(argv) && !jf.Python:
		data, _ := afero.ReadFile(appFs, argv[0])
		var unsupported []string
		var err error
		if kind == core.SchedulerSGE {
			spec, unsupported, err = sge.ParseScript(data)
		} else {
			spec, _, unsupported, err = slurm.ParseScript(data)
		}
		if err != nil {
			return core.JobSpec{}, errors.Wrapf(err, "cannot parse job script %s", argv[0])
		}
		if len(unsupported) > 0 {
			logger.WarningPrintf("%d unsupported options in %s: %s",
				len(unsupported), argv[0], strings.Join(unsupported, " "))
			fmt.Fprintf(os.Stderr, "WARNING: ignoring unsupported options: %s\n", strings.Join(unsupported, " "))
		}
	case jf.Python:
		spec.Command = core.PythonCommand(cluster.Interpreter(), argv[0], argv[1:]...)
	default:
		spec.Command = core.NewCommand(argv...)
	}
	if err := opts.Apply(&spec); err != nil {
		return core.JobSpec{}, err
	}
	if len(spec.Name) == 0 {
		spec.Name = defaultName
	}
	spec = spec.WithDefaults(cluster)
	logger.DebugObj("job spec", spec)
	return spec, spec.Validate()
}

func submittedMessage(sub core.Submission) string {
	if sub.Scheduler == core.SchedulerSGE {
		return fmt.Sprintf("Your job %s (\"%s\") has been submitted", sub.JobID, sub.Name)
	}
	return fmt.Sprintf("Submitted batch job %s", sub.JobID)
}

// submitCommandLine is shared by sbatch and qsub. check, when set, runs
// against the scheduler before the job is submitted.
func submitCommandLine(name, kind string, jf JobFlags, dryRun bool, argv []string,
	check func(ctx context.Context, spec core.JobSpec) error) error {
	_, cluster, err := loadCluster(jf.Cluster)
	if err != nil {
		return errors.Wrap(err, name)
	}
	spec, err := buildJobSpec(kind, cluster, jf, argv)
	if err != nil {
		return errors.Wrap(err, name)
	}
	sched, err := newScheduler(kind)
	if err != nil {
		return errors.Wrap(err, name)
	}
	if dryRun {
		script, err := sched.Render(spec)
		if err != nil {
			return err
		}
		_, err = stdout.Write(script)
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if check != nil {
		if err := check(ctx, spec); err != nil {
			return errors.Wrap(err, name)
		}
	}
	sub, err := sched.Submit(ctx, spec)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, submittedMessage(sub))
	return nil
}
