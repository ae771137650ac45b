package core

import (
	"os/exec"

	"github.com/alessio/shellescape"
	"github.com/pkg/errors"
)

var ErrEmptyCommand = errors.New("empty command")

// Command is the program a job runs and its positional arguments, in order.
type Command struct {
	Executable string   `json:"executable" yaml:"executable"`
	Args       []string `json:"args,omitempty" yaml:"args,omitempty"`
}

func NewCommand(argv ...string) Command {
	if len(argv) == 0 {
		return Command{}
	}
	return Command{
		Executable: argv[0],
		Args:       append([]string{}, argv[1:]...),
	}
}

// PythonCommand runs script unbuffered (python -u) so output reaches the
// scheduler logs as it is written.
func PythonCommand(interpreter, script string, args ...string) Command {
	if len(interpreter) == 0 {
		interpreter = DefaultPython
	}
	return Command{
		Executable: interpreter,
		Args:       append([]string{"-u", script}, args...),
	}
}

func (c Command) Argv() []string {
	return append([]string{c.Executable}, c.Args...)
}

func (c Command) IsEmpty() bool {
	return len(c.Executable) == 0
}

// String is the command line as a shell would read it back.
func (c Command) String() string {
	if c.IsEmpty() {
		return ""
	}
	return shellescape.QuoteCommand(c.Argv())
}

// LookPathFunc resolves an executable name to a path.
type LookPathFunc func(file string) (string, error)

var DefaultLookPath LookPathFunc = exec.LookPath

// Resolve checks the executable can be found at submission time.
func (c Command) Resolve(lookPath LookPathFunc) (string, error) {
	if c.IsEmpty() {
		return "", ErrEmptyCommand
	}
	if lookPath == nil {
		lookPath = DefaultLookPath
	}
	path, err := lookPath(c.Executable)
	if err != nil {
		return "", errors.Wrapf(err, "cannot resolve executable %q", c.Executable)
	}
	return path, nil
}
