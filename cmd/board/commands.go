package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kandev/taskboard/internal/board/editor"
	"github.com/kandev/taskboard/internal/board/move"
	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/events/bus"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/taskclient"
)

// reportedError is an error the notifier has already shown on stderr.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// isReported is checked by main before printing an error.
func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// withApp builds the app for one command and tears it down afterwards.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()
	return fn(cmd.Context(), a)
}

func viewCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show every column of the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				return printBoard(ctx, cmd, a, flags)
			})
		},
	}
	cmd.Flags().IntVarP(&flags.pages, "pages", "p", 1, "pages to load per column")
	cmd.Flags().StringVarP(&flags.search, "search", "s", "", "only show tasks matching this text")
	return cmd
}

func searchCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show the tasks whose title or description contains query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.search = args[0]
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				return printBoard(ctx, cmd, a, flags)
			})
		},
	}
	cmd.Flags().IntVarP(&flags.pages, "pages", "p", 1, "pages to load per column")
	return cmd
}

// printBoard loads flags.pages pages of every column and renders the board.
func printBoard(ctx context.Context, cmd *cobra.Command, a *app, flags *globalFlags) error {
	a.board.UI.SetSearch(flags.search)
	views, err := a.board.View(ctx)
	if err != nil {
		return err
	}
	for page := 2; page <= flags.pages; page++ {
		for _, v := range views {
			if v.Err != nil || !v.HasMore {
				continue
			}
			if _, err := a.board.LoadMore(ctx, v.Column); err != nil {
				return err
			}
		}
		if views, err = a.board.View(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderBoard(views, flags.search))
	return nil
}

func moveCmd(flags *globalFlags) *cobra.Command {
	var (
		to    string
		index int
	)
	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to a column and slot, as if dragged there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			column, err := models.ParseColumn(to)
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				outcome, err := a.board.Move(ctx, args[0], column, index)
				if outcome == move.OutcomeFailed {
					return reported(err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], outcome)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "destination column")
	cmd.Flags().IntVar(&index, "index", 0, "slot in the destination column (0 is the top)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func createCmd(flags *globalFlags) *cobra.Command {
	var draft draftFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task at the top of a column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			column, err := draft.parseColumn()
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				created, err := a.board.Editor.Create(ctx, editor.Draft{
					Title:       draft.title,
					Description: draft.description,
					Column:      column,
				})
				if err != nil {
					return reported(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s in %s at %d\n", created.ID, created.Column, created.Position)
				return nil
			})
		},
	}
	draft.register(cmd)
	return cmd
}

func editCmd(flags *globalFlags) *cobra.Command {
	var draft draftFlags
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change the title, description or column of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				current, _, err := a.board.Locate(ctx, args[0])
				if err != nil {
					return err
				}
				a.board.UI.OpenEditor(current.ID)

				d := editor.Draft{Title: current.Title, Description: current.Description, Column: current.Column}
				if cmd.Flags().Changed("title") {
					d.Title = draft.title
				}
				if cmd.Flags().Changed("description") {
					d.Description = draft.description
				}
				if cmd.Flags().Changed("column") {
					if d.Column, err = draft.parseColumn(); err != nil {
						return err
					}
				}

				updated, err := a.board.Editor.Edit(ctx, current.ID, d)
				if err != nil {
					return reported(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s in %s\n", updated.ID, updated.Column)
				return nil
			})
		},
	}
	draft.register(cmd)
	return cmd
}

func deleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				task, _, err := a.board.Locate(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.board.Editor.Delete(ctx, task); err != nil {
					return reported(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", task.ID)
				return nil
			})
		},
	}
}

func rebalanceCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rebalance <column>",
		Short: "Renumber a column's positions evenly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			column, err := models.ParseColumn(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				tasks, err := a.board.Rebalance(ctx, column)
				if err != nil {
					return err
				}
				printPositions(cmd, tasks)
				return nil
			})
		},
	}
}

func printPositions(cmd *cobra.Command, tasks []taskclient.Task) {
	for _, t := range tasks {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12d %s  %s\n", t.Position, t.ID, t.Title)
	}
}

func watchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print task and board events published over NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if a.cfg.NATS.URL == "" {
					return errors.New("watch needs nats.url to be configured")
				}
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return watch(ctx, cmd, a)
			})
		},
	}
}

func watch(ctx context.Context, cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()
	printEvent := func(_ context.Context, e *bus.Event) error {
		fmt.Fprintf(out, "%s %-24s %-36s %v\n", e.Timestamp.Format("15:04:05"), e.Type, e.TaskID(), e.Data)
		return nil
	}
	for _, subject := range []string{events.AllTaskEvents, events.AllBoardEvents} {
		sub, err := a.events.Subscribe(subject, printEvent)
		if err != nil {
			return err
		}
		defer func() { _ = sub.Unsubscribe() }()
	}

	<-ctx.Done()
	return nil
}

// draftFlags are the editor fields shared by create and edit.
type draftFlags struct {
	title       string
	description string
	column      string
}

func (d *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&d.title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&d.description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&d.column, "column", "c", string(models.ColumnBacklog), "column")
}

func (d *draftFlags) parseColumn() (models.Column, error) {
	return models.ParseColumn(d.column)
}
