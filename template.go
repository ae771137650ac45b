package main

import (
	core "hpcjob.io/core"
)

type TemplateCommand struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

var templateCommand TemplateCommand

// exampleJobs are the downscaling jobs this tool was first written for.
func exampleJobs() []core.JobSpec {
	fourHours, _ := core.ParseTimeLimit("0-4:00:00")
	return []core.JobSpec{
		{
			Name:      "tmean7",
			TimeLimit: fourHours,
			Memory:    35 * core.GiB,
			Command:   core.PythonCommand("python", "s6_rea_corrmerge_No.py", "tmean", "BMA", "zz", "7"),
		},
		{
			Name:      "err_1979",
			TimeLimit: fourHours,
			Memory:    10 * core.GiB,
			Command:   core.PythonCommand("python", "reanalysis_downscale.py", "1979", "1980"),
		},
	}
}

func (x *TemplateCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	data, err := core.MarshalJobFile(exampleJobs())
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func init() {
	parser.AddCommand("template",
		"Print an example jobs file",
		"Print a jobs file for the submit command",
		&templateCommand)
}
