package core

import (
	"io"

	"github.com/jessevdk/go-flags"
	"github.com/olekukonko/tablewriter"
)

func CreateHelpErr() error {
	err := flags.Error{
		Type:    flags.ErrHelp,
		Message: "show help message",
	}
	return &err
}

// PrintTable writes rows with the first row as header.
func PrintTable(w io.Writer, table [][]string, border bool) {
	if len(table) == 0 {
		return
	}
	t := tablewriter.NewWriter(w)
	t.SetHeader(table[0])
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetBorder(border)
	if !border {
		t.SetHeaderLine(false)
		t.SetColumnSeparator("")
		t.SetCenterSeparator("")
		t.SetAlignment(tablewriter.ALIGN_LEFT)
		t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		t.SetTablePadding("  ")
		t.SetNoWhiteSpace(true)
	}
	t.AppendBulk(table[1:])
	t.Render()
}
