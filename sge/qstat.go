package sge

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/pkg/errors"
)

const QStatName = "qstat"

// Job is one qstat row.
type Job struct {
	ID       string `xml:"JB_job_number"`
	Priority string `xml:"JAT_prio"`
	Name     string `xml:"JB_name"`
	User     string `xml:"JB_owner"`
	State    string `xml:"state"`
	// start time for running jobs, submission time for pending ones
	StartTime  string `xml:"JAT_start_time"`
	SubmitTime string `xml:"JB_submission_time"`
	Queue      string `xml:"queue_name"`
	Slots      string `xml:"slots"`
}

func (j Job) Time() string {
	if len(j.StartTime) > 0 {
		return j.StartTime
	}
	return j.SubmitTime
}

// Layout of qstat -xml
/*
<job_info>
  <queue_info>
    <job_list state="running">...</job_list>
  </queue_info>
  <job_info>
    <job_list state="pending">...</job_list>
  </job_info>
</job_info>
*/
type qStatInfo struct {
	Running []Job `xml:"queue_info>job_list"`
	Pending []Job `xml:"job_info>job_list"`
}

// Queue lists running then pending jobs, for one user when user is set.
// Without -u qstat shows the caller's jobs.
func (s *SGE) Queue(ctx context.Context, user string) ([]Job, error) {
	args := []string{"-xml"}
	if len(user) > 0 {
		args = append(args, "-u", user)
	}
	out, err := s.Exec.Run(ctx, nil, QStatName, args...)
	if err != nil {
		return nil, errors.Wrap(err, "qstat")
	}
	return parseQStat(out)
}

func parseQStat(out []byte) ([]Job, error) {
	if len(strings.TrimSpace(string(out))) == 0 {
		return nil, nil
	}
	var info qStatInfo
	if err := xml.Unmarshal(out, &info); err != nil {
		return nil, errors.Wrap(err, "qstat: cannot read output")
	}
	return append(info.Running, info.Pending...), nil
}

func QueueTable(jobs []Job) [][]string {
	table := [][]string{
		{"job-ID", "prior", "name", "user", "state", "submit/start at", "queue", "slots"},
	}
	for _, job := range jobs {
		table = append(table, []string{
			job.ID,
			job.Priority,
			job.Name,
			job.User,
			job.State,
			job.Time(),
			job.Queue,
			job.Slots})
	}
	return table
}
