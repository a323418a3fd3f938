package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/todos/internal/dispatch"
	"github.com/sandeepkv93/todos/internal/export"
	"github.com/sandeepkv93/todos/internal/storage"
	"github.com/sandeepkv93/todos/internal/update"
	"github.com/sandeepkv93/todos/internal/views"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "todos",
		Short: "Keep a short list of things to do",
		Long: `todos keeps an ordered list of tasks in the storage backend of your
choice. Run it without arguments for the interactive list.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runTUI,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/todos/todos.yaml)")
	root.PersistentFlags().StringP("storage", "s", "", fmt.Sprintf("storage backend (%s)", strings.Join(storage.Backends(), ", ")))
	root.PersistentFlags().String("namespace", "", "list namespace inside the backend")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newListCmd(),
		newAddCmd(),
		newToggleCmd(),
		newRemoveCmd(),
		newClearCmd(),
		newExportCmd(),
	)
	return root
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	queue := dispatch.NewQueue(a.cfg.TUI.QueueBuffer, a.logger)
	queue.Start()
	defer queue.Stop()

	model := update.NewModel(update.Deps{
		Context:    ctx,
		Controller: a.ctrl,
		Board:      a.board,
		Queue:      queue,
		Logger:     a.logger.WithField("component", "tui"),
		Title:      "todos | " + a.store.Namespace(),
		ShowHelp:   a.cfg.TUI.ShowHelp,
	})
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("todos failed: %w", err)
	}
	return nil
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			snap := a.board.Snapshot()
			md := views.Markdown(a.store.Namespace(), snap.Items)
			if len(snap.Items) > 0 {
				md += "\n" + views.SummaryLine(snap.Summary) + "\n"
			}
			if plain, _ := cmd.Flags().GetBool("plain"); plain {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderMarkdown(md))
			return nil
		},
	}
	cmd.Flags().Bool("plain", false, "print raw markdown")
	return cmd
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title must not be empty")
			}
			a, err := openApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctrl.SubmitNewTask(cmd.Context(), title); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added #%d: %s\n", len(a.board.Snapshot().Items), title)
			return nil
		},
	}
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <n>",
		Aliases: []string{"done"},
		Short:   "Flip the done flag of task n",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPosition(cmd, args[0], func(a *app, item views.BoardItem) (string, error) {
				p, ok := a.ctrl.Presenter(item.ID)
				if !ok {
					return "", fmt.Errorf("task %s is gone", item.ID)
				}
				if err := p.ToggleRequested(cmd.Context()); err != nil {
					return "", err
				}
				state := "done"
				if item.Done {
					state = "active"
				}
				return fmt.Sprintf("%s: %s", state, item.Title), nil
			})
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <n>",
		Aliases: []string{"delete"},
		Short:   "Delete task n",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPosition(cmd, args[0], func(a *app, item views.BoardItem) (string, error) {
				p, ok := a.ctrl.Presenter(item.ID)
				if !ok {
					return "", fmt.Errorf("task %s is gone", item.ID)
				}
				if err := p.DestroyRequested(cmd.Context()); err != nil {
					return "", err
				}
				return "deleted: " + item.Title, nil
			})
		},
	}
}

func withPosition(cmd *cobra.Command, raw string, fn func(a *app, item views.BoardItem) (string, error)) error {
	pos, err := strconv.Atoi(strings.TrimPrefix(raw, "#"))
	if err != nil {
		return fmt.Errorf("invalid task number: %s", raw)
	}
	a, err := openApp(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	item, err := a.itemAt(pos)
	if err != nil {
		return err
	}
	msg, err := fn(a, item)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every completed task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n := a.ctrl.Summary().DoneCount
			if err := a.ctrl.ClearCompleted(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d completed\n", n)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the list as markdown, JSON, CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			if out != "" && !cmd.Flags().Changed("format") {
				if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" {
					format = ext
				}
			}

			a, err := openApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := export.NewExporter(a.store, a.store.Namespace()).Export(format)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", export.FormatMarkdown, fmt.Sprintf("output format (%s)", strings.Join(export.Formats(), ", ")))
	cmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	return cmd
}
