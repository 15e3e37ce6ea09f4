package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dms-go/internal/app"
	"dms-go/internal/model"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Read and write board posts",
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")
		return withApp(cmd, "PostList", func(ctx context.Context, a *app.DMSApp) error {
			p, err := a.Posts(ctx, page, size)
			if err != nil {
				return err
			}
			if len(p.Content) == 0 {
				fmt.Println("No posts.")
				return nil
			}
			tw := newTable()
			fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tVIEWS\tCOMMENTS\tCREATED\t")
			for _, post := range p.Content {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t\n",
					post.ID, post.Title, post.AuthorName, post.ViewCount, post.CommentCount, post.CreatedAt)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Printf("\npage %d of %d (%d posts)\n", p.Number+1, p.TotalPages, p.TotalElements)
			return nil
		})
	},
}

var postShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a post and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, "PostShow", func(ctx context.Context, a *app.DMSApp) error {
			p, comments, err := a.Post(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("#%d  %s\n", p.ID, p.Title)
			fmt.Printf("by %s, %s, %d views\n\n", p.AuthorName, p.CreatedAt, p.ViewCount)
			fmt.Println(p.Content)
			for _, f := range p.Files {
				fmt.Printf("  file %d  %s\n", f.ID, f.OriginalFileName)
			}
			printComments(comments)
			return nil
		})
	},
}

func printComments(comments []model.Comment) {
	if len(comments) == 0 {
		return
	}
	fmt.Printf("\n%d comment(s):\n", len(comments))
	for _, c := range comments {
		fmt.Printf("  [%d] %s, %s: %s\n", c.ID, c.AuthorName, c.CreatedAt, c.Content)
	}
}

func postChanges(cmd *cobra.Command) app.PostChanges {
	var c app.PostChanges
	flags := cmd.Flags()
	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		c.Title = &v
	}
	if flags.Changed("content") {
		v, _ := flags.GetString("content")
		c.Content = &v
	}
	c.Attach, _ = flags.GetStringArray("attach")
	if flags.Lookup("detach") != nil {
		c.Detach, _ = flags.GetInt64Slice("detach")
	}
	return c
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a post",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := postChanges(cmd)
		return withApp(cmd, "PostCreate", func(ctx context.Context, a *app.DMSApp) error {
			p, err := a.CreatePost(ctx, c)
			if err != nil {
				return err
			}
			fmt.Printf("Created post %d\n", p.ID)
			return nil
		})
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c := postChanges(cmd)
		return withApp(cmd, "PostEdit", func(ctx context.Context, a *app.DMSApp) error {
			p, err := a.EditPost(ctx, id, c)
			if err != nil {
				return err
			}
			fmt.Printf("Saved post %d\n", p.ID)
			return nil
		})
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, "PostDelete", func(ctx context.Context, a *app.DMSApp) error {
			if err := a.DeletePost(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted post %d\n", id)
			return nil
		})
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage comments on posts",
}

var commentListCmd = &cobra.Command{
	Use:   "list POSTID",
	Short: "List the comments of a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, "CommentList", func(ctx context.Context, a *app.DMSApp) error {
			comments, err := a.Comments(ctx, postID)
			if err != nil {
				return err
			}
			if len(comments) == 0 {
				fmt.Println("No comments.")
			}
			printComments(comments)
			return nil
		})
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add POSTID TEXT",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID(args[0])
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		return withApp(cmd, "CommentAdd", func(ctx context.Context, a *app.DMSApp) error {
			comments, err := a.AddComment(ctx, postID, text)
			if err != nil {
				return err
			}
			printComments(comments)
			return nil
		})
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit ID POSTID TEXT",
	Short: "Change a comment",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		postID, err := parseID(args[1])
		if err != nil {
			return err
		}
		text := strings.Join(args[2:], " ")
		return withApp(cmd, "CommentEdit", func(ctx context.Context, a *app.DMSApp) error {
			comments, err := a.EditComment(ctx, postID, id, text)
			if err != nil {
				return err
			}
			printComments(comments)
			return nil
		})
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete ID POSTID",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		postID, err := parseID(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, "CommentDelete", func(ctx context.Context, a *app.DMSApp) error {
			comments, err := a.DeleteComment(ctx, postID, id)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted comment %d\n", id)
			printComments(comments)
			return nil
		})
	},
}

func init() {
	postListCmd.Flags().Int("page", 0, "Page number, starting at 0")
	postListCmd.Flags().Int("size", 10, "Posts per page")

	for _, c := range []*cobra.Command{postCreateCmd, postEditCmd} {
		c.Flags().String("title", "", "Post title")
		c.Flags().String("content", "", "Post text")
		c.Flags().StringArray("attach", nil, "Attach an image or document (repeatable)")
	}
	postEditCmd.Flags().Int64Slice("detach", nil, "Remove the attachment with this file id (repeatable)")

	postCmd.AddCommand(postListCmd)
	postCmd.AddCommand(postShowCmd)
	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postDeleteCmd)

	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentDeleteCmd)
}
