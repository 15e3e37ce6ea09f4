package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dms-go/internal/app"
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Upload, download and delete stored files",
}

var fileUploadCmd = &cobra.Command{
	Use:   "upload PATH",
	Short: "Upload a standalone file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "FileUpload", func(ctx context.Context, a *app.DMSApp) error {
			report, done := progressPrinter("uploading")
			f, err := a.UploadFile(ctx, args[0], report)
			done()
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded file %d: %s (%d bytes)\n", f.ID, f.FileName, f.FileSize)
			return nil
		})
	},
}

var fileDownloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Download a stored file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("output")
		return withApp(cmd, "FileDownload", func(ctx context.Context, a *app.DMSApp) error {
			report, done := progressPrinter("downloading")
			path, err := a.DownloadFile(ctx, id, out, report)
			done()
			if err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", path)
			return nil
		})
	},
}

var fileDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a stored file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		docID, _ := cmd.Flags().GetInt64("document")
		return withApp(cmd, "FileDelete", func(ctx context.Context, a *app.DMSApp) error {
			doc, err := a.DeleteFile(ctx, id, docID)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted file %d\n", id)
			if doc != nil {
				fmt.Printf("Document %d now has %d attachment(s)\n", doc.ID, len(doc.Files))
			}
			return nil
		})
	},
}

func init() {
	fileDownloadCmd.Flags().StringP("output", "o", ".", "Target file or directory")
	fileDeleteCmd.Flags().Int64("document", 0, "Document the file is attached to; it is reloaded after the delete")

	fileCmd.AddCommand(fileUploadCmd)
	fileCmd.AddCommand(fileDownloadCmd)
	fileCmd.AddCommand(fileDeleteCmd)
}
