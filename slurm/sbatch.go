package slurm

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/pkg/errors"

	core "hpcjob.io/core"
)

const directivePrefix = "#SBATCH "

// Render writes spec as an sbatch script. Directives come in a fixed order:
// job-name, time, mem, then the optional ones that are set. The body is the
// job script as read, or the command line.
func Render(spec core.JobSpec) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, errors.Wrapf(err, "sbatch: invalid job %q", spec.Name)
	}
	var b bytes.Buffer
	b.WriteString("#!" + spec.ShellPath() + "\n")
	writeDirective(&b, "job-name", spec.Name)
	writeDirective(&b, "time", spec.TimeLimit.String())
	writeDirective(&b, "mem", spec.Memory.String())
	writeDirective(&b, "partition", spec.Partition)
	writeDirective(&b, "account", spec.Account)
	writeDirective(&b, "chdir", spec.Workdir)
	writeDirective(&b, "output", spec.Output)
	writeDirective(&b, "error", spec.Error)
	b.WriteString("\n")
	b.WriteString(spec.Script())
	return b.Bytes(), nil
}

func writeDirective(b *bytes.Buffer, name, value string) {
	if len(value) == 0 {
		return
	}
	b.WriteString(directivePrefix + "--" + name + "=" + shellescape.Quote(value) + "\n")
}

var submittedRegexp = regexp.MustCompile(`Submitted batch job ([0-9]+)`)

// parseSBatchOutput accepts "--parsable" output (<jobid>[;<cluster>]) and the
// default "Submitted batch job <jobid>".
func parseSBatchOutput(out []byte) (string, error) {
	text := strings.TrimSpace(string(out))
	if match := submittedRegexp.FindStringSubmatch(text); match != nil {
		return match[1], nil
	}
	lines := strings.Split(text, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	id := strings.SplitN(last, ";", 2)[0]
	if len(id) == 0 || strings.Trim(id, "0123456789") != "" {
		return "", errors.Errorf("sbatch: unexpected output %q", text)
	}
	return id, nil
}
