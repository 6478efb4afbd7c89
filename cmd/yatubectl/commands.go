package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yatube/yatube/internal/api"
	"github.com/yatube/yatube/internal/db"
)

func migrateCmd(ctx context.Context, a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.database.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func groupCmd(ctx context.Context, a *app) *cobra.Command {
	group := &cobra.Command{Use: "group", Short: "Manage groups"}

	var description string
	create := &cobra.Command{
		Use:   "create <slug> <title>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.service.CreateGroup(ctx, args[1], args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created group %s (id %d)\n", g.Slug, g.ID)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "group description")

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a group; its posts are kept without a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service.DeleteGroup(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted group %s\n", args[0])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List groups by title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := db.NewGroupRepository(db.NewRepository(a.database.DB)).List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSLUG\tTITLE")
			for _, g := range groups {
				fmt.Fprintf(w, "%d\t%s\t%s\n", g.ID, g.Slug, g.Title)
			}
			return w.Flush()
		},
	}

	group.AddCommand(create, del, list)
	return group
}

func userCmd(ctx context.Context, a *app) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage identities"}
	user.AddCommand(&cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an identity with its posts, comments and follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service.DeleteUser(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
			return nil
		},
	})
	return user
}

func cacheCmd(ctx context.Context, a *app) *cobra.Command {
	c := &cobra.Command{Use: "cache", Short: "Manage the home feed cache"}
	c.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached feed page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := a.pageCache()
			if err != nil {
				return err
			}
			defer pages.Close()
			if err := pages.InvalidateAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "feed cache cleared")
			return nil
		},
	})
	return c
}

func tokenCmd(a *app) *cobra.Command {
	var (
		roles []string
		ttl   time.Duration
		id    int64
	)
	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Sign a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := api.IssueToken(&a.cfg.Auth, api.Identity{ID: id, Username: args[0], Roles: roles}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "uid", 1, "identity id")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "roles to grant")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
