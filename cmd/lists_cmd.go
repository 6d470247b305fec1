package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/toodledo/internal/toodledo"
)

// listKind describes the commands of a task list type: folders or contexts.
type listKind[E any] struct {
	singular string
	plural   string
	headers  []string
	row      func(E) []string

	get    func(c *toodledo.Client, ctx context.Context) ([]E, error)
	add    func(c *toodledo.Client, ctx context.Context, name string, private bool) (E, error)
	rename func(c *toodledo.Client, ctx context.Context, id int64, name string) (E, error)
	remove func(c *toodledo.Client, ctx context.Context, id int64) error
}

var folderKind = listKind[toodledo.Folder]{
	singular: "folder",
	plural:   "folders",
	headers:  []string{"ID", "Name", "Private", "Archived", "Order"},
	row: func(f toodledo.Folder) []string {
		return []string{formatOptID(f.ID), f.Name.Value(), yesNo(f.Private), yesNo(f.Archived), formatOptID(f.Order)}
	},
	get: (*toodledo.Client).GetFolders,
	add: func(c *toodledo.Client, ctx context.Context, name string, private bool) (toodledo.Folder, error) {
		return c.AddFolder(ctx, toodledo.Folder{Name: toodledo.Some(name), Private: toodledo.Some(private)})
	},
	rename: func(c *toodledo.Client, ctx context.Context, id int64, name string) (toodledo.Folder, error) {
		return c.EditFolder(ctx, toodledo.Folder{ID: toodledo.Some(id), Name: toodledo.Some(name)})
	},
	remove: (*toodledo.Client).DeleteFolder,
}

var contextKind = listKind[toodledo.Context]{
	singular: "context",
	plural:   "contexts",
	headers:  []string{"ID", "Name", "Private"},
	row: func(cx toodledo.Context) []string {
		return []string{formatOptID(cx.ID), cx.Name.Value(), yesNo(cx.Private)}
	},
	get: (*toodledo.Client).GetContexts,
	add: func(c *toodledo.Client, ctx context.Context, name string, private bool) (toodledo.Context, error) {
		return c.AddContext(ctx, toodledo.Context{Name: toodledo.Some(name), Private: toodledo.Some(private)})
	},
	rename: func(c *toodledo.Client, ctx context.Context, id int64, name string) (toodledo.Context, error) {
		return c.EditContext(ctx, toodledo.Context{ID: toodledo.Some(id), Name: toodledo.Some(name)})
	},
	remove: (*toodledo.Client).DeleteContext,
}

func newFoldersCmd(cc *commandContext) *cobra.Command {
	cmd := newListCmd(cc, folderKind)
	cmd.AddCommand(newFolderArchiveCmd(cc))
	return cmd
}

func newContextsCmd(cc *commandContext) *cobra.Command {
	return newListCmd(cc, contextKind)
}

func newListCmd[E any](cc *commandContext, kind listKind[E]) *cobra.Command {
	parent := &cobra.Command{
		Use:     kind.plural,
		Aliases: []string{kind.singular},
		Short:   fmt.Sprintf("List and change %s", kind.plural),
	}

	render := func(cmd *cobra.Command, records []E) {
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, kind.row(r))
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(kind.headers, rows, []columnAlignment{alignRight}))
	}

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", kind.plural),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			records, err := kind.get(client, cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, records)
			}
			render(cmd, records)
			return nil
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	var private bool
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: fmt.Sprintf("Create a %s", kind.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			record, err := kind.add(client, cmd.Context(), args[0], private)
			if err != nil {
				return err
			}
			render(cmd, []E{record})
			return nil
		},
	}
	addCmd.Flags().BoolVar(&private, "private", false, fmt.Sprintf("Make the %s private", kind.singular))

	renameCmd := &cobra.Command{
		Use:   "rename ID NAME",
		Short: fmt.Sprintf("Rename a %s", kind.singular),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args[:1])
			if err != nil {
				return err
			}
			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			record, err := kind.rename(client, cmd.Context(), ids[0], args[1])
			if err != nil {
				return err
			}
			render(cmd, []E{record})
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: fmt.Sprintf("Delete a %s", kind.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args)
			if err != nil {
				return err
			}
			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			if err := kind.remove(client, cmd.Context(), ids[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", kind.singular, ids[0])
			return nil
		},
	}

	parent.AddCommand(listCmd, addCmd, renameCmd, deleteCmd)
	return parent
}

func newFolderArchiveCmd(cc *commandContext) *cobra.Command {
	var unarchive bool

	cmd := &cobra.Command{
		Use:   "archive ID",
		Short: "Archive a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args)
			if err != nil {
				return err
			}
			client, err := cc.client(cmd)
			if err != nil {
				return err
			}
			folder, err := client.EditFolder(cmd.Context(), toodledo.Folder{
				ID:       toodledo.Some(ids[0]),
				Archived: toodledo.Some(!unarchive),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(folderKind.headers, [][]string{folderKind.row(folder)}, []columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unarchive, "undo", false, "Unarchive the folder instead")
	return cmd
}
