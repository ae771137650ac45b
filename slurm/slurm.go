package slurm

import (
	"context"
	"regexp"

	"github.com/pkg/errors"

	core "hpcjob.io/core"
	logger "hpcjob.io/logger"
)

// Slurm CLI commands
const (
	SBatchName  = "sbatch"
	SCancelName = "scancel"
	SQueueName  = "squeue"
	SInfoName   = "sinfo"
)

// Slurm submits through the sbatch family of commands.
type Slurm struct {
	Exec     core.Executor
	LookPath core.LookPathFunc
}

func New(exec core.Executor) *Slurm {
	return &Slurm{
		Exec:     exec,
		LookPath: core.DefaultLookPath,
	}
}

func (s *Slurm) Name() string {
	return core.SchedulerSlurm
}

func (s *Slurm) Render(spec core.JobSpec) ([]byte, error) {
	return Render(spec)
}

// Submit pipes the rendered script to sbatch. Every call is a new job.
func (s *Slurm) Submit(ctx context.Context, spec core.JobSpec) (core.Submission, error) {
	if err := core.CheckSubmittable(spec, s.LookPath); err != nil {
		return core.Submission{}, errors.Wrap(err, "sbatch")
	}
	script, err := Render(spec)
	if err != nil {
		return core.Submission{}, err
	}
	logger.DebugPrintf("sbatch script for %s:\n%s", spec.Name, script)
	out, err := s.Exec.Run(ctx, script, SBatchName, "--parsable")
	if err != nil {
		return core.Submission{}, errors.Wrap(err, "sbatch: submit failed")
	}
	jobID, err := parseSBatchOutput(out)
	if err != nil {
		return core.Submission{}, err
	}
	sub := core.NewSubmission(s.Name(), jobID, spec)
	logger.InfoObj("submission", sub)
	return sub, nil
}

var jobIDRegexp = regexp.MustCompile(`^[0-9]+(_[0-9]+)?(\.[0-9a-z]+)?$`)

func (s *Slurm) Cancel(ctx context.Context, jobID string) error {
	if !jobIDRegexp.MatchString(jobID) {
		return errors.Errorf("scancel: invalid job id %q", jobID)
	}
	if _, err := s.Exec.Run(ctx, nil, SCancelName, jobID); err != nil {
		return errors.Wrap(err, "scancel")
	}
	logger.InfoPrintf("scancel: requested cancellation of job %s", jobID)
	return nil
}
