package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/yukikurage/taskmanager/internal/dto"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTasks(env *Env, tasks []dto.Task) error {
	if tasks == nil {
		tasks = []dto.Task{}
	}
	if env.JSON {
		return writeJSON(env.Out, tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(env.Out, "No tasks.")
		return nil
	}

	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, due(t))
	}
	return tw.Flush()
}

func printTask(env *Env, t dto.Task) error {
	if env.JSON {
		return writeJSON(env.Out, t)
	}

	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	if t.Description != nil {
		fmt.Fprintf(tw, "Description:\t%s\n", *t.Description)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status)
	fmt.Fprintf(tw, "Priority:\t%s\n", t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(tw, "Due:\t%s\n", t.DueDate)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "Updated:\t%s\n", t.UpdatedAt.Format("2006-01-02 15:04"))
	return tw.Flush()
}

func printSaved(env *Env, verb string, t dto.Task) error {
	if env.JSON {
		return writeJSON(env.Out, t)
	}
	fmt.Fprintf(env.Out, "%s task %d: %s\n", verb, t.ID, t.Title)
	return nil
}

func due(t dto.Task) string {
	if t.DueDate == nil {
		return "-"
	}
	return t.DueDate.String()
}
