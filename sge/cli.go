package sge

import (
	"io/ioutil"
	"sort"
	"strconv"
	"strings"

	flag "github.com/juju/gnuflag"
	"github.com/pkg/errors"

	core "hpcjob.io/core"
)

// Option descriptions
const (
	qSubJobNameDesc   = `The name of the job.`
	qSubShellDesc     = `Specifies the interpreting shell for the job.`
	qSubResourceDesc  = `Launch the job in a Grid Engine queue meeting the given resource request list.`
	qSubQueueDesc     = `Defines or redefines a list of cluster queues, queue domains or queue instances which may be used to execute this job.`
	qSubProjectDesc   = `Specifies the project to which this job is assigned.`
	qSubWorkdirDesc   = `Execute the job from the directory specified in working_dir.`
	qSubCwdDesc       = `Execute the job from the current working directory.`
	qSubOutputDesc    = `The path used for the standard output stream of the job.`
	qSubErrorDesc     = `Defines or redefines the path used for the standard error stream of the job.`
	resourceTimeLimit = "h_rt"
	resourceMemory    = "h_vmem"
)

// List of supported qsub options
// map[string]struct{} enables querying supported options using:
// _, ok := qSubSupportedArgs()["<option>"]
func qSubSupportedArgs() map[string]struct{} {
	return map[string]struct{}{
		"N":   {},
		"S":   {},
		"l":   {},
		"q":   {},
		"P":   {},
		"wd":  {},
		"cwd": {},
		"o":   {},
		"e":   {},
	}
}

// qsub options that take no value
var qSubBoolArgs = map[string]struct{}{
	"cwd": {}, "V": {}, "hard": {}, "soft": {}, "notify": {},
	"clear": {}, "terse": {}, "h": {},
}

// qsub options that take two values (-pe NAME SLOTS)
var qSubPairArgs = map[string]struct{}{
	"pe": {},
}

type arrayFlags []string

func (i *arrayFlags) String() string {
	return strings.Join(*i, " ")
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

// Options holds qsub options as written. Empty fields were not given.
type Options struct {
	JobName   string
	Shell     string
	Resources []string
	Queue     string
	Project   string
	Workdir   string
	Cwd       bool
	Output    string
	Error     string
}

// parseResources splits "-l a=1,b=2" requests into pairs; later requests win.
func parseResources(resources []string) map[string]string {
	res := map[string]string{}
	for _, resource := range resources {
		for _, pair := range strings.Split(resource, ",") {
			split := strings.SplitN(pair, "=", 2)
			// save valid pairs (foo=bar)
			if len(split) == 2 && len(split[0]) > 0 {
				res[strings.TrimSpace(split[0])] = strings.TrimSpace(split[1])
			}
		}
	}
	return res
}

// Apply decodes the options that are set into spec. h_rt becomes the time
// limit and h_vmem the memory; other resources are left to the caller.
func (o Options) Apply(spec *core.JobSpec) error {
	resources := parseResources(o.Resources)
	if val, ok := resources[resourceTimeLimit]; ok {
		t, err := parseHardRuntime(val)
		if err != nil {
			return errors.Wrap(err, "-l "+resourceTimeLimit)
		}
		spec.TimeLimit = t
	}
	if val, ok := resources[resourceMemory]; ok {
		m, err := core.ParseMemory(val)
		if err != nil {
			return errors.Wrap(err, "-l "+resourceMemory)
		}
		spec.Memory = m
	}
	if len(o.JobName) > 0 {
		spec.Name = o.JobName
	}
	if len(o.Shell) > 0 {
		spec.Shell = o.Shell
	}
	if len(o.Queue) > 0 {
		spec.Partition = o.Queue
	}
	if len(o.Project) > 0 {
		spec.Account = o.Project
	}
	if len(o.Workdir) > 0 {
		spec.Workdir = o.Workdir
	}
	if len(o.Output) > 0 {
		spec.Output = o.Output
	}
	if len(o.Error) > 0 {
		spec.Error = o.Error
	}
	return nil
}

// parseHardRuntime reads the Grid Engine time format: "[[h:]m:]s" or a
// plain number of seconds.
func parseHardRuntime(value string) (core.TimeLimit, error) {
	fields := strings.Split(strings.TrimSpace(value), ":")
	if len(fields) > 3 {
		return 0, errors.Wrapf(core.ErrInvalidTimeLimit, "%q", value)
	}
	var seconds int64
	for _, field := range fields {
		n, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return 0, errors.Wrapf(core.ErrInvalidTimeLimit, "%q", value)
		}
		seconds = seconds*60 + int64(n)
	}
	return core.TimeLimitFromSeconds(seconds)
}

// splitUnsupported drops options this tool does not handle (and their
// values). Grid Engine writes multi-letter options with one dash, so the
// supported ones are rewritten to the --name=value form gnuflag expects.
func splitUnsupported(args []string) (supported, unsupported []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' {
			supported = append(supported, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		_, isBool := qSubBoolArgs[name]
		if _, ok := qSubSupportedArgs()[name]; ok {
			switch {
			case isBool && len(name) > 1:
				supported = append(supported, "--"+name)
			case isBool:
				supported = append(supported, "-"+name)
			case i+1 >= len(args):
				// gnuflag reports the missing value
				supported = append(supported, "-"+name)
			case len(name) > 1:
				supported = append(supported, "--"+name+"="+args[i+1])
				i++
			default:
				supported = append(supported, "-"+name, args[i+1])
				i++
			}
			continue
		}
		unsupported = append(unsupported, name)
		if isBool {
			continue
		}
		if _, ok := qSubPairArgs[name]; ok {
			i += 2
		} else {
			i++
		}
	}
	return
}

func parseQSubArgs(args []string) (Options, []string, error) {
	flags := flag.NewFlagSet("qsub", flag.ContinueOnError)
	flags.SetOutput(ioutil.Discard)

	var opts Options
	var resources arrayFlags
	flags.StringVar(&opts.JobName, "N", "", qSubJobNameDesc)
	flags.StringVar(&opts.Shell, "S", "", qSubShellDesc)
	flags.Var(&resources, "l", qSubResourceDesc)
	flags.StringVar(&opts.Queue, "q", "", qSubQueueDesc)
	flags.StringVar(&opts.Project, "P", "", qSubProjectDesc)
	flags.StringVar(&opts.Workdir, "wd", "", qSubWorkdirDesc)
	flags.BoolVar(&opts.Cwd, "cwd", false, qSubCwdDesc)
	flags.StringVar(&opts.Output, "o", "", qSubOutputDesc)
	flags.StringVar(&opts.Error, "e", "", qSubErrorDesc)

	supported, unsupported := splitUnsupported(args)
	if err := flags.Parse(false, supported); err != nil {
		return Options{}, unsupported, errors.Wrap(err, "qsub: unable to parse arguments")
	}
	if flags.NArg() > 0 {
		return Options{}, unsupported, errors.Errorf("qsub: unexpected argument %q in directives", flags.Arg(0))
	}
	opts.Resources = resources

	// resources other than h_rt and h_vmem are reported like options
	var extra []string
	for key := range parseResources(resources) {
		if key != resourceTimeLimit && key != resourceMemory {
			extra = append(extra, "l "+key)
		}
	}
	sort.Strings(extra)
	return opts, append(unsupported, extra...), nil
}

// ParseScript reads a qsub script: #$ directives, then the body that is
// submitted unchanged. Command is the first line of the body.
// Unsupported options are returned, not applied.
func ParseScript(script []byte) (core.JobSpec, []string, error) {
	js, err := core.ParseJobScript("$", strings.NewReader(string(script)))
	if err != nil {
		return core.JobSpec{}, nil, err
	}
	opts, unsupported, err := parseQSubArgs(js.Args)
	if err != nil {
		return core.JobSpec{}, unsupported, err
	}
	spec := core.JobSpec{
		Shell: js.Shell,
		Body:  string(js.Script),
	}
	if cmd, cerr := js.FirstCommand(); cerr == nil {
		spec.Command = cmd
	}
	if err := opts.Apply(&spec); err != nil {
		return core.JobSpec{}, unsupported, err
	}
	return spec, unsupported, nil
}
