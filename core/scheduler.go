package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Scheduler kinds understood by cluster profiles
const (
	SchedulerSlurm = "slurm"
	SchedulerSGE   = "sge"
)

// Scheduler hands JobSpecs to an external batch system.
type Scheduler interface {
	Name() string
	// Render returns the batch script that Submit would hand over.
	Render(spec JobSpec) ([]byte, error)
	Submit(ctx context.Context, spec JobSpec) (Submission, error)
	Cancel(ctx context.Context, jobID string) error
}

// Submission records one accepted submit call. Submitting the same JobSpec
// twice gives two Submissions with different IDs and JobIDs.
type Submission struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	Scheduler   string    `json:"scheduler"`
	Name        string    `json:"name"`
	Command     string    `json:"command"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func NewSubmission(scheduler, jobID string, spec JobSpec) Submission {
	return Submission{
		ID:          uuid.NewString(),
		JobID:       jobID,
		Scheduler:   scheduler,
		Name:        spec.Name,
		Command:     spec.Command.String(),
		SubmittedAt: time.Now().UTC(),
	}
}
