package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"notedeck/internal/markup"
	"notedeck/internal/model"
)

func printFolders(cmd *cobra.Command, app *App, folders []*model.Folder) {
	if app.NoColor {
		color.NoColor = true
	}
	if len(folders) == 0 {
		f := color.New(color.Faint, color.Italic)
		fmt.Fprintln(cmd.OutOrStdout(), f.Sprint("  none"))
		return
	}

	table := uitable.New()
	table.MaxColWidth = 50
	table.AddRow("ID", "NAME", "TYPE", "VALUE", "FLAGS")
	for _, f := range folders {
		table.AddRow(f.ID, folderName(f), string(f.Type), folderValue(f), folderFlags(f))
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
}

func folderName(f *model.Folder) string {
	if f.CrossedOut {
		return color.New(color.Faint, color.CrossedOut).Sprint(f.Name)
	}
	return f.Name
}

func folderValue(f *model.Folder) string {
	if f.Type != model.FolderTypeCalc {
		return ""
	}
	v := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f.CalcNumber), "0"), ".")
	if v == "" {
		v = "0"
	}
	method := model.EncodeCalcMethod(f.CalcMethod)
	if method == "" {
		method = "sum"
	}
	return v + " (" + method + ")"
}

func folderFlags(f *model.Folder) string {
	var flags []string
	if f.PasswordHash != "" {
		flags = append(flags, "locked")
	}
	if f.Shared() {
		flags = append(flags, fmt.Sprintf("shared:%d", len(f.CoWorkers)))
	}
	if f.Checklist {
		flags = append(flags, "checklist")
	}
	return strings.Join(flags, ",")
}

func printNotes(cmd *cobra.Command, app *App, notes []*model.Note) {
	if app.NoColor {
		color.NoColor = true
	}
	if len(notes) == 0 {
		f := color.New(color.Faint, color.Italic)
		fmt.Fprintln(cmd.OutOrStdout(), f.Sprint("  none"))
		return
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("ID", "TITLE", "TAGS", "TASKS", "VALUE")
	for _, n := range notes {
		title := n.Title
		if n.CrossedOut {
			title = color.New(color.Faint, color.CrossedOut).Sprint(title)
		}
		tasks := ""
		if done, total := markup.Checkboxes(n.Text); total > 0 {
			tasks = fmt.Sprintf("%d/%d", done, total)
		}
		value := ""
		if n.HasCalcNumber {
			value = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", n.CalcNumber), "0"), ".")
		}
		table.AddRow(n.ID, title, strings.Join(markup.Hashtags(n.Text), ","), tasks, value)
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
}
