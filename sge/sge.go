package sge

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	core "hpcjob.io/core"
	logger "hpcjob.io/logger"
)

// SGE CLI commands
const (
	QSubName = "qsub"
	QDelName = "qdel"
)

// SGE submits through qsub for Grid Engine clusters.
type SGE struct {
	Exec     core.Executor
	LookPath core.LookPathFunc
}

func New(exec core.Executor) *SGE {
	return &SGE{
		Exec:     exec,
		LookPath: core.DefaultLookPath,
	}
}

func (s *SGE) Name() string {
	return core.SchedulerSGE
}

func (s *SGE) Render(spec core.JobSpec) ([]byte, error) {
	return Render(spec)
}

func (s *SGE) Submit(ctx context.Context, spec core.JobSpec) (core.Submission, error) {
	if err := core.CheckSubmittable(spec, s.LookPath); err != nil {
		return core.Submission{}, errors.Wrap(err, "qsub")
	}
	script, err := Render(spec)
	if err != nil {
		return core.Submission{}, err
	}
	logger.DebugPrintf("qsub script for %s:\n%s", spec.Name, script)
	out, err := s.Exec.Run(ctx, script, QSubName, "-terse")
	if err != nil {
		return core.Submission{}, errors.Wrap(err, "qsub: submit failed")
	}
	jobID, err := parseQSubOutput(out)
	if err != nil {
		return core.Submission{}, err
	}
	sub := core.NewSubmission(s.Name(), jobID, spec)
	logger.InfoObj("submission", sub)
	return sub, nil
}

func (s *SGE) Cancel(ctx context.Context, jobID string) error {
	if len(jobID) == 0 || strings.Trim(jobID, "0123456789") != "" {
		return errors.Errorf("qdel: invalid job id %q", jobID)
	}
	if _, err := s.Exec.Run(ctx, nil, QDelName, jobID); err != nil {
		return errors.Wrap(err, "qdel")
	}
	logger.InfoPrintf("qdel: requested deletion of job %s", jobID)
	return nil
}
