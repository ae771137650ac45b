package core

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// JobSpec is a batch job submission request: resource limits plus the
// command to run under them.
type JobSpec struct {
	Name      string    `json:"name"`
	TimeLimit TimeLimit `json:"time"`
	Memory    Memory    `json:"mem"`
	Command   Command   `json:"command"`

	Partition string `json:"partition,omitempty"`
	Account   string `json:"account,omitempty"`
	Workdir   string `json:"workdir,omitempty"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`

	// Shell and Body come from a job script. When Body is set it is
	// submitted as written and Command is only its first command line.
	Shell string `json:"shell,omitempty"`
	Body  string `json:"body,omitempty"`
}

// Validate reports every violated constraint at once.
func (j JobSpec) Validate() error {
	var result *multierror.Error
	if len(strings.TrimSpace(j.Name)) == 0 {
		result = multierror.Append(result, errors.New("job name is empty"))
	}
	if j.TimeLimit <= 0 {
		result = multierror.Append(result, errors.Wrap(ErrInvalidTimeLimit, "must be positive"))
	}
	if j.Memory <= 0 {
		result = multierror.Append(result, errors.Wrap(ErrInvalidMemory, "must be positive"))
	}
	if j.Command.IsEmpty() {
		result = multierror.Append(result, ErrEmptyCommand)
	}
	for _, field := range [][2]string{
		{"name", j.Name},
		{"partition", j.Partition},
		{"account", j.Account},
		{"workdir", j.Workdir},
		{"output", j.Output},
		{"error", j.Error},
		{"shell", j.Shell},
	} {
		if strings.ContainsAny(field[1], "\r\n") {
			result = multierror.Append(result, errors.Errorf("%s contains a line break", field[0]))
		}
	}
	for _, arg := range j.Command.Argv() {
		if strings.ContainsAny(arg, "\r\n") {
			result = multierror.Append(result, errors.Errorf("command argument %q contains a line break", arg))
		}
	}
	return result.ErrorOrNil()
}

// WithDefaults fills unset partition and account from a cluster profile.
func (j JobSpec) WithDefaults(cluster Cluster) JobSpec {
	if len(j.Partition) == 0 {
		j.Partition = cluster.Partition
	}
	if len(j.Account) == 0 {
		j.Account = cluster.Account
	}
	return j
}

// ShellPath is the interpreter named on the #! line.
func (j JobSpec) ShellPath() string {
	if len(j.Shell) > 0 {
		return j.Shell
	}
	return DefaultShell
}

// Script is the job body: the script as written, or the command line.
func (j JobSpec) Script() string {
	if len(j.Body) == 0 {
		return j.Command.String() + "\n"
	}
	if strings.HasSuffix(j.Body, "\n") {
		return j.Body
	}
	return j.Body + "\n"
}

// CheckSubmittable validates spec and resolves its executable. A script body
// may start with shell builtins or functions (module, cd, source), so only
// bare command lines are resolved.
func CheckSubmittable(spec JobSpec, lookPath LookPathFunc) error {
	if err := spec.Validate(); err != nil {
		return errors.Wrapf(err, "invalid job %q", spec.Name)
	}
	if len(spec.Body) > 0 {
		return nil
	}
	if _, err := spec.Command.Resolve(lookPath); err != nil {
		return err
	}
	return nil
}
