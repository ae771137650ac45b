package core

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Layout for a jobs file
/*
jobs:
  - name: tmean7
    time: 0-4:00:00
    mem: 35G
    command: [python, -u, s6_rea_corrmerge_No.py, tmean, BMA, zz, "7"]
*/
type JobFile struct {
	Jobs []JobEntry `yaml:"jobs"`
}

type JobEntry struct {
	Name      string   `yaml:"name"`
	Time      string   `yaml:"time"`
	Mem       string   `yaml:"mem"`
	Command   []string `yaml:"command,flow"`
	Partition string   `yaml:"partition,omitempty"`
	Account   string   `yaml:"account,omitempty"`
	Workdir   string   `yaml:"workdir,omitempty"`
	Output    string   `yaml:"output,omitempty"`
	Error     string   `yaml:"error,omitempty"`
}

func (e JobEntry) JobSpec() (JobSpec, error) {
	timeLimit, err := ParseTimeLimit(e.Time)
	if err != nil {
		return JobSpec{}, err
	}
	mem, err := ParseMemory(e.Mem)
	if err != nil {
		return JobSpec{}, err
	}
	spec := JobSpec{
		Name:      e.Name,
		TimeLimit: timeLimit,
		Memory:    mem,
		Command:   NewCommand(e.Command...),
		Partition: e.Partition,
		Account:   e.Account,
		Workdir:   e.Workdir,
		Output:    e.Output,
		Error:     e.Error,
	}
	return spec, spec.Validate()
}

func NewJobEntry(spec JobSpec) JobEntry {
	return JobEntry{
		Name:      spec.Name,
		Time:      spec.TimeLimit.String(),
		Mem:       spec.Memory.String(),
		Command:   spec.Command.Argv(),
		Partition: spec.Partition,
		Account:   spec.Account,
		Workdir:   spec.Workdir,
		Output:    spec.Output,
		Error:     spec.Error,
	}
}

// ParseJobFile returns the jobs in file order. Unknown keys are rejected.
func ParseJobFile(r io.Reader) ([]JobSpec, error) {
	var file JobFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, errors.New("jobs file is empty")
		}
		return nil, errors.Wrap(err, "cannot decode jobs file")
	}
	if len(file.Jobs) == 0 {
		return nil, errors.New("jobs file has no jobs")
	}
	specs := make([]JobSpec, 0, len(file.Jobs))
	for i, entry := range file.Jobs {
		spec, err := entry.JobSpec()
		if err != nil {
			return nil, errors.Wrapf(err, "job %d (%s)", i, entry.Name)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func ReadJobFile(fs afero.Fs, filename string) ([]JobSpec, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read jobs file")
	}
	return ParseJobFile(bytes.NewReader(data))
}

func MarshalJobFile(specs []JobSpec) ([]byte, error) {
	file := JobFile{}
	for _, spec := range specs {
		file.Jobs = append(file.Jobs, NewJobEntry(spec))
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
