package core

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tmean7() JobSpec {
	limit, _ := ParseTimeLimit("0-4:00:00")
	return JobSpec{
		Name:      "tmean7",
		TimeLimit: limit,
		Memory:    35 * GiB,
		Command:   PythonCommand("python", "s6_rea_corrmerge_No.py", "tmean", "BMA", "zz", "7"),
	}
}

func TestJobSpec_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate   func(*JobSpec)
		expected int
	}{
		"valid":                 {func(*JobSpec) {}, 0},
		"missing name":          {func(j *JobSpec) { j.Name = " " }, 1},
		"zero time limit":       {func(j *JobSpec) { j.TimeLimit = 0 }, 1},
		"negative memory":       {func(j *JobSpec) { j.Memory = -1 }, 1},
		"empty command":         {func(j *JobSpec) { j.Command = Command{} }, 1},
		"line break in output":  {func(j *JobSpec) { j.Output = "a\nb" }, 1},
		"line break in command": {func(j *JobSpec) { j.Command.Args = append(j.Command.Args, "x\ny") }, 1},
		"everything wrong": {func(j *JobSpec) {
			*j = JobSpec{}
		}, 4},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			spec := tmean7()
			tc.mutate(&spec)
			err := spec.Validate()
			if tc.expected == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			merr, ok := err.(*multierror.Error)
			require.True(t, ok)
			assert.Len(t, merr.Errors, tc.expected)
		})
	}
}

func TestJobSpec_WithDefaults(t *testing.T) {
	cluster := Cluster{Scheduler: SchedulerSlurm, Partition: "short", Account: "hydro"}

	spec := tmean7().WithDefaults(cluster)
	assert.Equal(t, "short", spec.Partition)
	assert.Equal(t, "hydro", spec.Account)

	spec = tmean7()
	spec.Partition = "long"
	spec = spec.WithDefaults(cluster)
	assert.Equal(t, "long", spec.Partition)
}

func TestCheckSubmittable(t *testing.T) {
	found := func(file string) (string, error) { return "/usr/bin/" + file, nil }
	missing := func(file string) (string, error) { return "", errors.New("not found") }

	assert.NoError(t, CheckSubmittable(tmean7(), found))
	assert.Error(t, CheckSubmittable(tmean7(), missing))

	invalid := tmean7()
	invalid.Memory = 0
	assert.Error(t, CheckSubmittable(invalid, found))
}

func TestCommand(t *testing.T) {
	cmd := PythonCommand("", "reanalysis_downscale.py", "1979", "1980")
	assert.Equal(t, []string{"python", "-u", "reanalysis_downscale.py", "1979", "1980"}, cmd.Argv())
	assert.Equal(t, "python -u reanalysis_downscale.py 1979 1980", cmd.String())

	quoted := NewCommand("echo", "two words", "it's", "")
	assert.Equal(t, `echo 'two words' 'it'"'"'s' ''`, quoted.String())

	assert.True(t, NewCommand().IsEmpty())
	_, err := NewCommand().Resolve(nil)
	assert.Equal(t, ErrEmptyCommand, err)
}

func TestNewSubmission_DistinctIDs(t *testing.T) {
	spec := tmean7()
	first := NewSubmission(SchedulerSlurm, "100", spec)
	second := NewSubmission(SchedulerSlurm, "101", spec)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "python -u s6_rea_corrmerge_No.py tmean BMA zz 7", first.Command)
	assert.Equal(t, "tmean7", second.Name)
}

func TestJobSpec_ScriptBody(t *testing.T) {
	spec := tmean7()
	assert.Equal(t, DefaultShell, spec.ShellPath())
	assert.Equal(t, "python -u s6_rea_corrmerge_No.py tmean BMA zz 7\n", spec.Script())

	spec.Shell = "/bin/bash -l"
	spec.Body = "module load python/3.10\ncd /scratch/era5\npython -u s6_rea_corrmerge_No.py tmean BMA zz 7"
	assert.Equal(t, "/bin/bash -l", spec.ShellPath())
	assert.Equal(t, spec.Body+"\n", spec.Script())

	// "module" is a shell function, not on PATH
	missing := func(file string) (string, error) { return "", errors.New("not found") }
	spec.Command = NewCommand("module", "load", "python/3.10")
	assert.NoError(t, CheckSubmittable(spec, missing))

	spec.Shell = "/bin/bash\n-x"
	assert.Error(t, spec.Validate())
}
