package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "hpcjob.io/core"
)

type fakeExec struct {
	calls []string
	out   map[string]string
}

func (f *fakeExec) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))
	if out, ok := f.out[name]; ok {
		return []byte(out), nil
	}
	return []byte(fmt.Sprintf("%d\n", 100+len(f.calls))), nil
}

// setup swaps the package environment for an in-memory one.
func setup(t *testing.T) (*fakeExec, *bytes.Buffer) {
	fake := &fakeExec{out: map[string]string{}}
	var out bytes.Buffer

	savedFs, savedExec, savedLookPath, savedStdout := appFs, executor, lookPath, stdout
	appFs = afero.NewMemMapFs()
	executor = fake
	lookPath = func(file string) (string, error) {
		if file == "missing" {
			return "", errors.New("executable file not found in $PATH")
		}
		return "/usr/bin/" + file, nil
	}
	stdout = &out
	t.Cleanup(func() {
		appFs, executor, lookPath, stdout = savedFs, savedExec, savedLookPath, savedStdout
	})
	t.Setenv(core.ConfigEnv, "/home/user/.config/hpcjob/config.json")
	return fake, &out
}

const tmean7Script = "#!/bin/bash\n" +
	"#SBATCH --job-name=tmean7\n" +
	"#SBATCH --time=0-4:00:00\n" +
	"#SBATCH --mem=35G\n" +
	"\n" +
	"python -u s6_rea_corrmerge_No.py tmean BMA zz 7\n"

func TestBuildJobSpec_Python(t *testing.T) {
	setup(t)
	cluster := core.Cluster{Scheduler: core.SchedulerSlurm, Partition: "short", Python: "python3"}
	jf := JobFlags{Jobname: "tmean7", Time: "0-4:00:00", Mem: "35G", Python: true}

	spec, err := buildJobSpec(core.SchedulerSlurm, cluster, jf, []string{"s6_rea_corrmerge_No.py", "tmean", "BMA", "zz", "7"})
	require.NoError(t, err)
	assert.Equal(t, "tmean7", spec.Name)
	assert.Equal(t, "short", spec.Partition)
	assert.Equal(t, "python3 -u s6_rea_corrmerge_No.py tmean BMA zz 7", spec.Command.String())
}

func TestBuildJobSpec_Command(t *testing.T) {
	setup(t)
	jf := JobFlags{Time: "10", Mem: "1G"}

	spec, err := buildJobSpec(core.SchedulerSlurm, core.Cluster{}, jf, []string{"/opt/bin/run.sh", "a b"})
	require.NoError(t, err)
	assert.Equal(t, "run.sh", spec.Name)
	assert.Equal(t, []string{"/opt/bin/run.sh", "a b"}, spec.Command.Argv())

	_, err = buildJobSpec(core.SchedulerSlurm, core.Cluster{}, JobFlags{Mem: "1G"}, []string{"run.sh"})
	assert.Error(t, err)
	_, err = buildJobSpec(core.SchedulerSlurm, core.Cluster{}, jf, nil)
	assert.Error(t, err)
}

func TestBuildJobSpec_ScriptOverride(t *testing.T) {
	setup(t)
	require.NoError(t, afero.WriteFile(appFs, "tmean7.sh", []byte(tmean7Script), 0755))

	spec, err := buildJobSpec(core.SchedulerSlurm, core.Cluster{}, JobFlags{Mem: "40G"}, []string{"tmean7.sh"})
	require.NoError(t, err)
	assert.Equal(t, "tmean7", spec.Name)
	assert.Equal(t, 40*core.GiB, spec.Memory)
	assert.Equal(t, "0-4:00:00", spec.TimeLimit.String())
	assert.Equal(t, "python -u s6_rea_corrmerge_No.py tmean BMA zz 7", spec.Command.String())
}

func TestBuildJobSpec_SGEScript(t *testing.T) {
	setup(t)
	script := "#!/bin/bash\n" +
		"#$ -N tmean7\n" +
		"#$ -l h_rt=4:00:00\n" +
		"#$ -l h_vmem=35G\n" +
		"\n" +
		"cd /scratch/era5\n" +
		"python -u s6_rea_corrmerge_No.py tmean BMA zz 7\n"
	require.NoError(t, afero.WriteFile(appFs, "job.sh", []byte(script), 0755))
	cluster := core.Cluster{Scheduler: core.SchedulerSGE, Partition: "all.q"}

	spec, err := buildJobSpec(core.SchedulerSGE, cluster, JobFlags{Time: "1:00:00"}, []string{"job.sh"})
	require.NoError(t, err)
	assert.Equal(t, "tmean7", spec.Name)
	assert.Equal(t, "0-1:00:00", spec.TimeLimit.String())
	assert.Equal(t, 35*core.GiB, spec.Memory)
	assert.Equal(t, "all.q", spec.Partition)
	assert.Equal(t, "cd /scratch/era5\npython -u s6_rea_corrmerge_No.py tmean BMA zz 7\n", spec.Body)

	// the same script read as sbatch has no limits
	_, err = buildJobSpec(core.SchedulerSlurm, cluster, JobFlags{}, []string{"job.sh"})
	assert.Error(t, err)
}

func TestParseArgs_JobArguments(t *testing.T) {
	tests := map[string]struct {
		args     []string
		expected string
	}{
		"options stop at the program": {
			[]string{"script", "-t", "10", "--mem", "1G", "python", "-u", "x.py", "-v", "--mem", "2"},
			"#!/bin/bash\n" +
				"#SBATCH --job-name=python\n" +
				"#SBATCH --time=0-0:10:00\n" +
				"#SBATCH --mem=1G\n" +
				"\n" +
				"python -u x.py -v --mem 2\n",
		},
		"python script": {
			[]string{"script", "-J", "tmean7", "-t", "0-4:00:00", "--mem", "35G", "--python",
				"s6_rea_corrmerge_No.py", "tmean", "BMA", "zz", "7"},
			tmean7Script,
		},
		"double dash": {
			[]string{"script", "--scheduler", "sge", "-J", "err_1979", "-t", "0-4:00:00", "--mem", "10G",
				"--", "python", "-u", "reanalysis_downscale.py", "1979", "1980"},
			"#!/bin/bash\n" +
				"#$ -S /bin/bash\n" +
				"#$ -N err_1979\n" +
				"#$ -l h_rt=4:00:00\n" +
				"#$ -l h_vmem=10G\n" +
				"#$ -cwd\n" +
				"\n" +
				"python -u reanalysis_downscale.py 1979 1980\n",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, out := setup(t)
			scriptCommand = ScriptCommand{}
			_, err := parser.ParseArgs(tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.String())
		})
	}
}

func TestSBatch_DryRun(t *testing.T) {
	fake, out := setup(t)
	cmd := SBatchCommand{DryRun: true}
	cmd.Job = JobFlags{Jobname: "tmean7", Time: "0-4:00:00", Mem: "35G", Python: true}
	cmd.Args.Command = []string{"s6_rea_corrmerge_No.py", "tmean", "BMA", "zz", "7"}

	require.NoError(t, cmd.Execute(nil))
	assert.Equal(t, tmean7Script, out.String())
	assert.Empty(t, fake.calls)
}

func TestSBatch_SubmitTwice(t *testing.T) {
	fake, out := setup(t)
	require.NoError(t, afero.WriteFile(appFs, "tmean7.sh", []byte(tmean7Script), 0755))

	cmd := SBatchCommand{}
	cmd.Args.Command = []string{"tmean7.sh"}
	require.NoError(t, cmd.Execute(nil))
	require.NoError(t, cmd.Execute(nil))

	assert.Equal(t, []string{"sbatch --parsable", "sbatch --parsable"}, fake.calls)
	assert.Equal(t, "Submitted batch job 101\nSubmitted batch job 102\n", out.String())
}

func TestSBatch_CheckTime(t *testing.T) {
	fake, out := setup(t)
	fake.out["sinfo"] = "short*|up|2:00:00|10|idle|node[01-10]\n"

	cmd := SBatchCommand{CheckTime: true}
	cmd.Job = JobFlags{Time: "0-4:00:00", Mem: "10G", Python: true}
	cmd.Args.Command = []string{"reanalysis_downscale.py", "1979", "1980"}

	err := cmd.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds partition short")
	assert.Empty(t, out.String())
	assert.Len(t, fake.calls, 1)
}

func TestSBatch_MissingExecutable(t *testing.T) {
	fake, _ := setup(t)
	cmd := SBatchCommand{}
	cmd.Job = JobFlags{Time: "10", Mem: "1G"}
	cmd.Args.Command = []string{"missing"}

	assert.Error(t, cmd.Execute(nil))
	assert.Empty(t, fake.calls)
}

func TestQSub_DryRun(t *testing.T) {
	_, out := setup(t)
	cmd := QSubCommand{DryRun: true}
	cmd.Job = JobFlags{Jobname: "err_1979", Time: "0-4:00:00", Mem: "10G", Python: true}
	cmd.Args.Command = []string{"reanalysis_downscale.py", "1979", "1980"}

	require.NoError(t, cmd.Execute(nil))
	assert.Contains(t, out.String(), "#$ -l h_rt=4:00:00\n#$ -l h_vmem=10G\n")
	assert.True(t, strings.HasSuffix(out.String(), "\npython -u reanalysis_downscale.py 1979 1980\n"))
}

func TestSubmit_JobFile(t *testing.T) {
	fake, out := setup(t)
	tmpl := TemplateCommand{}
	require.NoError(t, tmpl.Execute(nil))
	require.NoError(t, afero.WriteFile(appFs, "jobs.yaml", out.Bytes(), 0644))
	out.Reset()

	dry := SubmitCommand{DryRun: true}
	dry.Args.JobFile = "jobs.yaml"
	require.NoError(t, dry.Execute(nil))
	assert.True(t, strings.HasPrefix(out.String(), tmean7Script+"\n#!/bin/bash\n#SBATCH --job-name=err_1979\n"))
	assert.Empty(t, fake.calls)
	out.Reset()

	submit := SubmitCommand{}
	submit.Args.JobFile = "jobs.yaml"
	require.NoError(t, submit.Execute(nil))
	assert.Len(t, fake.calls, 2)
	assert.Equal(t, "Submitted batch job 101\nSubmitted batch job 102\n", out.String())
}

func TestConfigCommands(t *testing.T) {
	fake, out := setup(t)

	set := ConfigSetCommand{Scheduler: core.SchedulerSGE, Partition: "all.q", Python: "python3"}
	set.Config.Cluster = "grid"
	require.NoError(t, set.Execute(nil))

	use := ConfigUseCommand{}
	use.Config.Cluster = "grid"
	require.NoError(t, use.Execute(nil))

	use.Config.Cluster = "nowhere"
	assert.Error(t, use.Execute(nil))

	out.Reset()
	list := ConfigListCommand{}
	require.NoError(t, list.Execute(nil))
	assert.Contains(t, out.String(), "grid")
	assert.Contains(t, out.String(), "all.q")

	// the selected profile picks the scheduler for submit
	require.NoError(t, afero.WriteFile(appFs, "jobs.yaml", []byte(
		"jobs:\n  - name: err_1979\n    time: 0-4:00:00\n    mem: 10G\n    command: [python, -u, reanalysis_downscale.py, 1979, 1980]\n"), 0644))
	out.Reset()
	submit := SubmitCommand{}
	submit.Args.JobFile = "jobs.yaml"
	fake.out["qsub"] = "555\n"
	require.NoError(t, submit.Execute(nil))
	assert.Equal(t, []string{"qsub -terse"}, fake.calls)
	assert.Equal(t, "Your job 555 (\"err_1979\") has been submitted\n", out.String())
}

func TestCancelJobs(t *testing.T) {
	fake, _ := setup(t)

	cmd := SCancelCommand{}
	cmd.Args.JobIDs = []string{"101", "bad id", "102"}
	err := cmd.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad id")
	assert.Equal(t, []string{"scancel 101", "scancel 102"}, fake.calls)
}

func TestSQueue(t *testing.T) {
	fake, out := setup(t)
	fake.out["squeue"] = "4242|short|tmean7|alice|R|1:02:03|1|node01\n"

	cmd := SQueueCommand{User: "alice"}
	require.NoError(t, cmd.Execute(nil))
	assert.Contains(t, out.String(), "tmean7")
	assert.Contains(t, out.String(), "JOBID")
}

func TestQStat(t *testing.T) {
	fake, out := setup(t)
	fake.out["qstat"] = `<job_info><queue_info><job_list state="running">` +
		`<JB_job_number>555</JB_job_number><JB_name>err_1979</JB_name><state>r</state>` +
		`</job_list></queue_info><job_info></job_info></job_info>`

	cmd := QStatCommand{}
	require.NoError(t, cmd.Execute(nil))
	assert.Equal(t, []string{"qstat -xml"}, fake.calls)
	assert.Contains(t, out.String(), "err_1979")
	assert.Contains(t, out.String(), "job-ID")
}
