package slurm

import (
	"io/ioutil"
	"strings"

	flag "github.com/juju/gnuflag"
	"github.com/pkg/errors"

	core "hpcjob.io/core"
)

// Option descriptions
const (
	sBatchJobNameDesc   = `Specify a name for the job allocation.`
	sBatchTimeDesc      = `Set a limit on the total run time of the job allocation. Acceptable formats: "minutes", "minutes:seconds", "hours:minutes:seconds", "days-hours", "days-hours:minutes" and "days-hours:minutes:seconds".`
	sBatchMemDesc       = `Specify the real memory required per node. Default units are megabytes. Different units can be specified using the suffix [K|M|G|T].`
	sBatchPartitionDesc = `Request a specific partition for the resource allocation.`
	sBatchAccountDesc   = `Charge resources used by this job to specified account.`
	sBatchChdirDesc     = `Set the working directory of the batch script before it is executed.`
	sBatchOutputDesc    = `Connect the batch script's standard output to the file name pattern. Default "slurm-%j.out".`
	sBatchErrorDesc     = `Connect the batch script's standard error to the file name pattern.`
)

// List of supported Slurm options
// map[string]struct{} enables querying supported options using:
// _, ok := sBatchSupportedArgs()["<option>"]
func sBatchSupportedArgs() map[string]struct{} {
	return map[string]struct{}{
		"job-name":  {},
		"time":      {},
		"mem":       {},
		"partition": {},
		"account":   {},
		"chdir":     {},
		"output":    {},
		"error":     {},
	}
}

// sbatch options that take no value; every other option consumes one
var sBatchBoolArgs = map[string]struct{}{
	"contiguous": {}, "exclusive": {}, "hold": {}, "H": {}, "ignore-pbs": {},
	"no-kill": {}, "k": {}, "no-requeue": {}, "overcommit": {}, "O": {},
	"oversubscribe": {}, "s": {}, "parsable": {}, "quiet": {}, "Q": {},
	"reboot": {}, "requeue": {}, "spread-job": {}, "test-only": {},
	"use-min-nodes": {}, "verbose": {}, "v": {}, "wait": {}, "W": {},
	"get-user-env": {},
}

// Slurm uses Short and Long command line options
// Save both with golang flag
type gnuFlag struct {
	Short string
	Long  string
	Value *string
}

// Use map to set command line options. map key is the same as Long option
type gnuFlags map[string]gnuFlag

// Check if either Long or Short flag is used
func lookupGnuArg(name string, spec gnuFlags) (string, error) {
	for k, v := range spec {
		// map key is the same as Long option
		if name == k || (len(v.Short) > 0 && name == v.Short) {
			return k, nil
		}
	}
	return "", errors.Errorf("sbatch: unknown option %s", name)
}

// Options holds sbatch options as written, before they are decoded.
// Empty fields were not given.
type Options struct {
	JobName   string
	Time      string
	Mem       string
	Partition string
	Account   string
	Chdir     string
	Output    string
	Error     string
}

func (o *Options) set(key, value string) {
	switch key {
	case "job-name":
		o.JobName = value
	case "time":
		o.Time = value
	case "mem":
		o.Mem = value
	case "partition":
		o.Partition = value
	case "account":
		o.Account = value
	case "chdir":
		o.Chdir = value
	case "output":
		o.Output = value
	case "error":
		o.Error = value
	}
}

// Apply decodes the options that are set into spec.
func (o Options) Apply(spec *core.JobSpec) error {
	if len(o.Time) > 0 {
		t, err := core.ParseTimeLimit(o.Time)
		if err != nil {
			return errors.Wrap(err, "--time")
		}
		spec.TimeLimit = t
	}
	if len(o.Mem) > 0 {
		m, err := core.ParseMemory(o.Mem)
		if err != nil {
			return errors.Wrap(err, "--mem")
		}
		spec.Memory = m
	}
	if len(o.JobName) > 0 {
		spec.Name = o.JobName
	}
	if len(o.Partition) > 0 {
		spec.Partition = o.Partition
	}
	if len(o.Account) > 0 {
		spec.Account = o.Account
	}
	if len(o.Chdir) > 0 {
		spec.Workdir = o.Chdir
	}
	if len(o.Output) > 0 {
		spec.Output = o.Output
	}
	if len(o.Error) > 0 {
		spec.Error = o.Error
	}
	return nil
}

// optionName returns the option name of arg and whether the value is inline
// (--opt=value or -Xvalue).
func optionName(arg string) (name string, inline bool) {
	if strings.HasPrefix(arg, "--") {
		name = arg[2:]
		if i := strings.Index(name, "="); i >= 0 {
			return name[:i], true
		}
		return name, false
	}
	name = arg[1:2]
	return name, len(arg) > 2
}

// splitUnsupported drops options this tool does not handle (and their values)
// so gnuflag only sees the supported set.
func splitUnsupported(args []string, spec gnuFlags) (supported, unsupported []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' || arg == "--" {
			supported = append(supported, arg)
			continue
		}
		name, inline := optionName(arg)
		if key, err := lookupGnuArg(name, spec); err == nil {
			if _, ok := sBatchSupportedArgs()[key]; ok {
				supported = append(supported, arg)
				if !inline && i+1 < len(args) {
					supported = append(supported, args[i+1])
					i++
				}
				continue
			}
		}
		unsupported = append(unsupported, name)
		if _, ok := sBatchBoolArgs[name]; ok || inline {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}
	return
}

func parseSBatchArgs(args []string) (Options, []string, error) {
	flags := flag.NewFlagSet("sbatch", flag.ContinueOnError)
	flags.SetOutput(ioutil.Discard)

	options := make(gnuFlags)
	// Add each supported option for sbatch using golang flag and Short/Long options
	options["job-name"] = gnuFlag{"J", "job-name", setFlagString(flags, "J", "job-name", "", sBatchJobNameDesc)}
	options["time"] = gnuFlag{"t", "time", setFlagString(flags, "t", "time", "", sBatchTimeDesc)}
	options["mem"] = gnuFlag{"", "mem", flags.String("mem", "", sBatchMemDesc)}
	options["partition"] = gnuFlag{"p", "partition", setFlagString(flags, "p", "partition", "", sBatchPartitionDesc)}
	options["account"] = gnuFlag{"A", "account", setFlagString(flags, "A", "account", "", sBatchAccountDesc)}
	options["chdir"] = gnuFlag{"D", "chdir", setFlagString(flags, "D", "chdir", "", sBatchChdirDesc)}
	options["output"] = gnuFlag{"o", "output", setFlagString(flags, "o", "output", "", sBatchOutputDesc)}
	options["error"] = gnuFlag{"e", "error", setFlagString(flags, "e", "error", "", sBatchErrorDesc)}

	supported, unsupported := splitUnsupported(args, options)
	if err := flags.Parse(false, supported); err != nil {
		return Options{}, unsupported, errors.Wrap(err, "sbatch: unable to parse arguments")
	}
	if flags.NArg() > 0 {
		return Options{}, unsupported, errors.Errorf("sbatch: unexpected argument %q in directives", flags.Arg(0))
	}

	var opts Options
	// Go through set flags
	flags.Visit(func(f *flag.Flag) {
		key, err := lookupGnuArg(f.Name, options)
		if err != nil {
			return
		}
		opts.set(key, *options[key].Value)
	})
	return opts, unsupported, nil
}

// Slurm support Short and Long command line options
// Register both with the same Golang flag
func setFlagString(flags *flag.FlagSet, short, long, value, usage string) *string {
	flagVar := flags.String(short, value, usage)
	flags.StringVar(flagVar, long, value, usage)
	return flagVar
}

// ParseScript reads an sbatch script: #SBATCH directives, then the body that
// is submitted unchanged. Command is the first line of the body.
// Unsupported options are returned, not applied.
func ParseScript(script []byte) (core.JobSpec, Options, []string, error) {
	js, err := core.ParseJobScript("SBATCH", strings.NewReader(string(script)))
	if err != nil {
		return core.JobSpec{}, Options{}, nil, err
	}
	opts, unsupported, err := parseSBatchArgs(js.Args)
	if err != nil {
		return core.JobSpec{}, Options{}, unsupported, err
	}
	spec := core.JobSpec{
		Shell: js.Shell,
		Body:  string(js.Script),
	}
	if cmd, cerr := js.FirstCommand(); cerr == nil {
		spec.Command = cmd
	}
	if err := opts.Apply(&spec); err != nil {
		return core.JobSpec{}, opts, unsupported, err
	}
	return spec, opts, unsupported, nil
}
