package slurm

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	core "hpcjob.io/core"
)

const sInfoFormat = "%P|%a|%l|%D|%t|%N"

type Partition struct {
	Name      string
	Default   bool
	Avail     string
	TimeLimit string
	Nodes     string
	State     string
	NodeList  string
}

// MaxTime is the partition time limit, or zero for "infinite" and
// unparseable limits.
func (p Partition) MaxTime() core.TimeLimit {
	if t, err := core.ParseTimeLimit(p.TimeLimit); err == nil {
		return t
	}
	return 0
}

func (s *Slurm) Partitions(ctx context.Context) ([]Partition, error) {
	out, err := s.Exec.Run(ctx, nil, SInfoName, "--noheader", "--format="+sInfoFormat)
	if err != nil {
		return nil, errors.Wrap(err, "sinfo")
	}
	return parseSInfo(out)
}

func parseSInfo(out []byte) ([]Partition, error) {
	var partitions []Partition
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != 6 {
			return nil, errors.Errorf("sinfo: cannot read line %q", line)
		}
		name := fields[0]
		isDefault := strings.HasSuffix(name, "*")
		partitions = append(partitions, Partition{
			Name:      strings.TrimSuffix(name, "*"),
			Default:   isDefault,
			Avail:     fields[1],
			TimeLimit: fields[2],
			Nodes:     fields[3],
			State:     fields[4],
			NodeList:  fields[5],
		})
	}
	return partitions, nil
}

// CheckTimeLimit reports a job whose limit exceeds its partition's, which
// sbatch would leave pending.
func CheckTimeLimit(spec core.JobSpec, partitions []Partition) error {
	for _, p := range partitions {
		if (len(spec.Partition) == 0 && p.Default) || p.Name == spec.Partition {
			if max := p.MaxTime(); max > 0 && spec.TimeLimit > max {
				return errors.Errorf("time limit %s exceeds partition %s limit %s",
					spec.TimeLimit, p.Name, max)
			}
			return nil
		}
	}
	return nil
}

func PartitionTable(partitions []Partition) [][]string {
	table := [][]string{
		{"PARTITION", "AVAIL", "TIMELIMIT", "NODES", "STATE", "NODELIST"},
	}
	for _, p := range partitions {
		name := p.Name
		if p.Default {
			name += "*"
		}
		table = append(table, []string{
			name,
			p.Avail,
			p.TimeLimit,
			p.Nodes,
			p.State,
			p.NodeList})
	}
	return table
}
