package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/spf13/afero"

	core "hpcjob.io/core"
	logger "hpcjob.io/logger"
)

// Options must precede positional arguments: everything after the first
// non-option (a job script or the program to run) belongs to the job.
var parser = flags.NewNamedParser("hpcjob", flags.PassDoubleDash|flags.PassAfterNonOption)

// swapped in tests
var (
	appFs    afero.Fs          = afero.NewOsFs()
	executor core.Executor     = core.OSExecutor{}
	lookPath core.LookPathFunc = core.DefaultLookPath
	stdout   io.Writer         = os.Stdout
)

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printHelp(parser *flags.Parser) {
	// Print help for active command
	parser.Command = parser.Command.Active
	var b bytes.Buffer
	parser.WriteHelp(&b)
	fmt.Println(b.String())
}

func main() {
	logger.Setup()
	args, err := parser.ParseArgs(os.Args[1:])
	if err == nil {
		os.Exit(0)
	}
	switch flagsErr := err.(type) {
	case *flags.Error:
		if flagsErr.Type == flags.ErrHelp ||
			flagsErr.Type == flags.ErrCommandRequired ||
			flagsErr.Type == flags.ErrRequired {
			printHelp(parser)
			os.Exit(0)
		} else if flagsErr.Type == flags.ErrUnknownCommand {
			if len(args) > 0 {
				fmt.Printf("`%v' not supported\n\n", args[0])
			}
			if parser.Command.Active != nil {
				printHelp(parser)
			}
		} else if flagsErr.Type == flags.ErrMarshal {
			fmt.Print("Invalid syntax\n\n")
			printHelp(parser)
			os.Exit(1)
		}
		fmt.Println(flagsErr.Error())
		os.Exit(1)

	default:
		logger.ErrorPrintf("%+v", err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
