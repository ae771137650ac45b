package sge

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/pkg/errors"

	core "hpcjob.io/core"
)

const directivePrefix = "#$ "

// characters qsub refuses in -N
const invalidNameChars = "\n\t\r/:@\\*?"

// Render writes spec as a qsub script. The wall-clock limit becomes h_rt with
// days folded into hours and the memory reservation becomes h_vmem.
func Render(spec core.JobSpec) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, errors.Wrapf(err, "qsub: invalid job %q", spec.Name)
	}
	if strings.ContainsAny(spec.Name, invalidNameChars) || strings.Contains(spec.Name, " ") {
		return nil, errors.Errorf("qsub: invalid job name %q", spec.Name)
	}
	var b bytes.Buffer
	b.WriteString("#!" + spec.ShellPath() + "\n")
	writeDirective(&b, "-S", shellBinary(spec))
	writeDirective(&b, "-N", spec.Name)
	writeDirective(&b, "-l", "h_rt="+spec.TimeLimit.Hours())
	writeDirective(&b, "-l", "h_vmem="+memory(spec.Memory))
	writeDirective(&b, "-q", spec.Partition)
	writeDirective(&b, "-P", spec.Account)
	if len(spec.Workdir) > 0 {
		writeDirective(&b, "-wd", spec.Workdir)
	} else {
		b.WriteString(directivePrefix + "-cwd\n")
	}
	writeDirective(&b, "-o", spec.Output)
	writeDirective(&b, "-e", spec.Error)
	b.WriteString("\n")
	b.WriteString(spec.Script())
	return b.Bytes(), nil
}

// shellBinary drops interpreter options: -S takes a path only.
func shellBinary(spec core.JobSpec) string {
	if fields := strings.Fields(spec.ShellPath()); len(fields) > 0 {
		return fields[0]
	}
	return core.DefaultShell
}

func writeDirective(b *bytes.Buffer, option, value string) {
	if len(value) == 0 {
		return
	}
	b.WriteString(directivePrefix + option + " " + shellescape.Quote(value) + "\n")
}

// memory renders with SGE suffixes, which stop at G.
func memory(m core.Memory) string {
	switch {
	case m%core.GiB == 0:
		return strconv.FormatInt(int64(m/core.GiB), 10) + "G"
	case m%core.MiB == 0:
		return strconv.FormatInt(int64(m/core.MiB), 10) + "M"
	}
	return strconv.FormatInt(int64(m), 10) + "K"
}

var submittedRegexp = regexp.MustCompile(`Your job(?:-array)? ([0-9]+)`)

// parseQSubOutput accepts -terse output (<jobid>[.<tasks>]) and the default
// `Your job <jobid> ("<name>") has been submitted`.
func parseQSubOutput(out []byte) (string, error) {
	text := strings.TrimSpace(string(out))
	if match := submittedRegexp.FindStringSubmatch(text); match != nil {
		return match[1], nil
	}
	id := strings.SplitN(text, ".", 2)[0]
	if len(id) == 0 || strings.Trim(id, "0123456789") != "" {
		return "", errors.Errorf("qsub: unexpected output %q", text)
	}
	return id, nil
}
