package core

import (
	"bufio"
	"io"
	"strings"

	"bitbucket.org/creachadair/shell"
	"github.com/pkg/errors"
)

const DefaultShell = "/bin/bash"

// Data for HPC job script
/*
#!/bin/bash
#SBATCH --job-name=tmean7
#SBATCH --time=0-4:00:00
#SBATCH --mem=35G

python -u s6_rea_corrmerge_No.py tmean BMA zz 7
*/
type JobScript struct {
	Shell string `json:"shell"`
	// Args parsed from the directive lines, in order
	Args   []string `json:"args"`
	Script []byte   `json:"script"`
}

// ParseJobScript collects the arguments of every "#<directive>" line before
// the first command. Blank lines and other comments may be mixed in with the
// directives, as sbatch allows.
func ParseJobScript(directive string, r io.Reader) (JobScript, error) {
	prefix := "#" + directive
	js := JobScript{Shell: DefaultShell}

	scanner := bufio.NewScanner(r)
	first := true
	parsed := false
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(line, "#!") {
				js.Shell = strings.TrimSpace(line[2:])
				continue
			}
		}
		if !parsed {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, prefix) {
				rest := trimmed[len(prefix):]
				if len(rest) > 0 && rest[0] != ' ' && rest[0] != '\t' {
					// e.g. #SBATCHX is a plain comment
					continue
				}
				args, ok := shell.Split(stripComment(rest))
				if !ok {
					return JobScript{}, errors.Errorf("unbalanced quotes in %q", line)
				}
				js.Args = append(js.Args, args...)
				continue
			}
			if len(trimmed) == 0 || strings.HasPrefix(trimmed, "#") {
				continue
			}
			parsed = true
		}
		js.Script = append(js.Script, line...)
		js.Script = append(js.Script, '\n')
	}
	if err := scanner.Err(); err != nil {
		return JobScript{}, errors.Wrap(err, "cannot read job script")
	}
	return js, nil
}

// FirstCommand splits the first non-comment line of the script body.
func (js JobScript) FirstCommand() (Command, error) {
	for _, line := range strings.Split(string(js.Script), "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "#") {
			continue
		}
		argv, ok := shell.Split(trimmed)
		if !ok {
			return Command{}, errors.Errorf("unbalanced quotes in %q", trimmed)
		}
		return NewCommand(argv...), nil
	}
	return Command{}, ErrEmptyCommand
}

// stripComment drops a trailing "# ..." that is not inside quotes.
func stripComment(s string) string {
	var quote rune
	prev := ' '
	for i, c := range s {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '#' && (prev == ' ' || prev == '\t'):
			return s[:i]
		}
		prev = c
	}
	return s
}
