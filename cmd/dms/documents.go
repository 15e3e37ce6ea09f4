package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dms-go/internal/app"
	"dms-go/internal/model"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage documents",
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		starred, _ := cmd.Flags().GetBool("starred")
		recent, _ := cmd.Flags().GetBool("recent")
		folderID, _ := cmd.Flags().GetInt64("folder")

		view := "all"
		switch {
		case starred && recent:
			return errors.New("--starred and --recent are mutually exclusive")
		case starred:
			view = "starred"
		case recent:
			view = "recent"
		}

		return withApp(cmd, "DocList", func(ctx context.Context, a *app.DMSApp) error {
			docs, err := a.Documents(ctx, view, folderID)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Println("No documents.")
				return nil
			}

			tw := newTable()
			fmt.Fprintln(tw, "ID\tTITLE\tFILES\tUPDATED\t")
			for _, d := range docs {
				star := ""
				if d.IsStarred {
					star = " *"
				}
				fmt.Fprintf(tw, "%d\t%s%s\t%d\t%s\t\n", d.ID, d.Title, star, len(d.Files), d.UpdatedAt)
			}
			return tw.Flush()
		})
	},
}

var docShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, "DocShow", func(ctx context.Context, a *app.DMSApp) error {
			d, err := a.Document(ctx, id)
			if err != nil {
				return err
			}
			printDocument(d)
			return nil
		})
	},
}

func printDocument(d *model.Document) {
	fmt.Printf("#%d  %s\n", d.ID, d.Title)
	if d.IsStarred {
		fmt.Println("Starred")
	}
	if d.FolderID != nil {
		fmt.Printf("Folder:  %d\n", *d.FolderID)
	}
	if d.CreatedBy != nil {
		fmt.Printf("Owner:   %s\n", d.CreatedBy.Username)
	}
	fmt.Printf("Created: %s\nUpdated: %s\n\n", d.CreatedAt, d.UpdatedAt)
	fmt.Println(d.Content)
	if len(d.Files) > 0 {
		fmt.Println("\nAttachments:")
		for _, f := range d.Files {
			fmt.Printf("  %d  %s  (%d bytes)\n", f.ID, f.OriginalFileName, f.FileSize)
		}
	}
}

// documentChanges collects the doc create/edit flags that were set.
func documentChanges(cmd *cobra.Command) (app.DocumentChanges, error) {
	var c app.DocumentChanges
	flags := cmd.Flags()

	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		c.Title = &v
	}
	if flags.Changed("content") {
		v, _ := flags.GetString("content")
		c.Content = &v
	}
	if flags.Changed("folder") {
		v, _ := flags.GetInt64("folder")
		c.FolderID = &v
	}
	if flags.Lookup("no-folder") != nil {
		c.ClearFolder, _ = flags.GetBool("no-folder")
	}
	if c.ClearFolder && c.FolderID != nil {
		return c, errors.New("--folder and --no-folder are mutually exclusive")
	}

	star, _ := flags.GetBool("star")
	unstar := false
	if flags.Lookup("unstar") != nil {
		unstar, _ = flags.GetBool("unstar")
	}
	switch {
	case star && unstar:
		return c, errors.New("--star and --unstar are mutually exclusive")
	case star:
		c.Starred = &star
	case unstar:
		f := false
		c.Starred = &f
	}

	c.Attach, _ = flags.GetStringArray("attach")
	if flags.Lookup("detach") != nil {
		c.Detach, _ = flags.GetInt64Slice("detach")
	}
	return c, nil
}

var docCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := documentChanges(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, "DocCreate", func(ctx context.Context, a *app.DMSApp) error {
			d, err := a.CreateDocument(ctx, c)
			if err != nil {
				return err
			}
			fmt.Printf("Created document %d with %d attachment(s)\n", d.ID, len(d.Files))
			return nil
		})
	},
}

var docEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := documentChanges(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, "DocEdit", func(ctx context.Context, a *app.DMSApp) error {
			d, err := a.EditDocument(ctx, id, c)
			if err != nil {
				return err
			}
			fmt.Printf("Saved document %d with %d attachment(s)\n", d.ID, len(d.Files))
			return nil
		})
	},
}

var docDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, "DocDelete", func(ctx context.Context, a *app.DMSApp) error {
			if err := a.DeleteDocument(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted document %d\n", id)
			return nil
		})
	},
}

var docExportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Copy a document's attachments into a vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		vaultName, _ := cmd.Flags().GetString("vault")
		return withApp(cmd, "DocExport", func(ctx context.Context, a *app.DMSApp) error {
			res, err := a.ExportDocument(ctx, id, vaultName)
			if res != nil {
				for _, k := range res.Exported {
					fmt.Printf("exported  %s\n", k)
				}
				for _, k := range res.Skipped {
					fmt.Printf("skipped   %s\n", k)
				}
			}
			return err
		})
	},
}

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "FolderList", func(ctx context.Context, a *app.DMSApp) error {
			folders, err := a.Folders(ctx)
			if err != nil {
				return err
			}
			if len(folders) == 0 {
				fmt.Println("No folders.")
				return nil
			}
			tw := newTable()
			fmt.Fprintln(tw, "ID\tNAME\tDOCUMENTS\t")
			for _, f := range folders {
				fmt.Fprintf(tw, "%d\t%s\t%d\t\n", f.ID, f.Name, f.DocumentCount)
			}
			return tw.Flush()
		})
	},
}

var folderCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a folder",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return withApp(cmd, "FolderCreate", func(ctx context.Context, a *app.DMSApp) error {
			f, err := a.CreateFolder(ctx, name)
			if err != nil {
				return err
			}
			fmt.Printf("Created folder %d: %s\n", f.ID, f.Name)
			return nil
		})
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a folder",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")
		return withApp(cmd, "FolderRename", func(ctx context.Context, a *app.DMSApp) error {
			f, err := a.RenameFolder(ctx, id, name)
			if err != nil {
				return err
			}
			fmt.Printf("Renamed folder %d to %s\n", f.ID, f.Name)
			return nil
		})
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, "FolderDelete", func(ctx context.Context, a *app.DMSApp) error {
			if err := a.DeleteFolder(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted folder %d\n", id)
			return nil
		})
	},
}

func init() {
	docListCmd.Flags().Bool("starred", false, "Only starred documents")
	docListCmd.Flags().Bool("recent", false, "The most recently changed documents")
	docListCmd.Flags().Int64("folder", 0, "Documents in this folder")

	for _, c := range []*cobra.Command{docCreateCmd, docEditCmd} {
		c.Flags().String("title", "", "Document title")
		c.Flags().String("content", "", "Document text")
		c.Flags().StringArray("attach", nil, "Attach a local file (repeatable)")
		c.Flags().Int64("folder", 0, "Put the document in this folder")
		c.Flags().Bool("star", false, "Star the document")
	}
	docEditCmd.Flags().Int64Slice("detach", nil, "Remove the attachment with this file id (repeatable)")
	docEditCmd.Flags().Bool("no-folder", false, "Take the document out of its folder")
	docEditCmd.Flags().Bool("unstar", false, "Remove the star")

	docExportCmd.Flags().String("vault", "", "Vault name from the config (default: the first vault)")

	docCmd.AddCommand(docListCmd)
	docCmd.AddCommand(docShowCmd)
	docCmd.AddCommand(docCreateCmd)
	docCmd.AddCommand(docEditCmd)
	docCmd.AddCommand(docDeleteCmd)
	docCmd.AddCommand(docExportCmd)

	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderCreateCmd)
	folderCmd.AddCommand(folderRenameCmd)
	folderCmd.AddCommand(folderDeleteCmd)
}
