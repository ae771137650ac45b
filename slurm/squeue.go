package slurm

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

const sQueueFormat = "%i|%P|%j|%u|%t|%M|%D|%R"

// Job is one squeue row.
type Job struct {
	ID        string
	Partition string
	Name      string
	User      string
	State     string
	Time      string
	Nodes     string
	Reason    string
}

// Queue lists jobs known to the controller, for one user when user is set.
func (s *Slurm) Queue(ctx context.Context, user string) ([]Job, error) {
	args := []string{"--noheader", "--format=" + sQueueFormat}
	if len(user) > 0 {
		args = append(args, "--user="+user)
	}
	out, err := s.Exec.Run(ctx, nil, SQueueName, args...)
	if err != nil {
		return nil, errors.Wrap(err, "squeue")
	}
	return parseSQueue(out)
}

func parseSQueue(out []byte) ([]Job, error) {
	var jobs []Job
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 8 {
			return nil, errors.Errorf("squeue: cannot read line %q", line)
		}
		// job names may contain the separator
		n := len(fields)
		jobs = append(jobs, Job{
			ID:        fields[0],
			Partition: fields[1],
			Name:      strings.Join(fields[2:n-5], "|"),
			User:      fields[n-5],
			State:     fields[n-4],
			Time:      fields[n-3],
			Nodes:     fields[n-2],
			Reason:    fields[n-1],
		})
	}
	return jobs, nil
}

func QueueTable(jobs []Job) [][]string {
	table := [][]string{
		{"JOBID", "PARTITION", "NAME", "USER", "ST", "TIME", "NODES", "NODELIST(REASON)"},
	}
	for _, job := range jobs {
		table = append(table, []string{
			job.ID,
			job.Partition,
			job.Name,
			job.User,
			job.State,
			job.Time,
			job.Nodes,
			job.Reason})
	}
	return table
}
