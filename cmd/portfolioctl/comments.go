package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/myinsta/portfolio-backend/internal/client/panel"
	"github.com/myinsta/portfolio-backend/internal/comments/domain"
)

func commentsCommand(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: portfolioctl comments <list|watch|post|delete> <project-id> [arguments]")
	}
	sub, projectID, rest := args[0], args[1], args[2:]

	c, store, err := newClient()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	switch sub {
	case "list":
		comments, err := c.ListComments(ctx, projectID)
		if err != nil {
			return err
		}
		p := panel.NewCommentsPanel(c, store, projectID, nil)
		printComments(os.Stdout, p, comments, time.Now())
		return nil

	case "watch":
		var p *panel.CommentsPanel
		p = panel.NewCommentsPanel(c, store, projectID, func(comments []domain.Comment) {
			fmt.Fprintln(os.Stdout, strings.Repeat("─", 40))
			printComments(os.Stdout, p, comments, time.Now())
		})
		if err := p.Open(ctx); err != nil {
			return err
		}
		defer p.Close()

		printComments(os.Stdout, p, p.Comments(), time.Now())
		zerolog.Ctx(ctx).Info().Str("project_id", projectID).Msg("watching comments, Ctrl-C to stop")
		select {
		case <-ctx.Done():
			return nil
		case <-p.Done():
			return panel.ErrFeedEnded
		}

	case "post":
		if len(rest) == 0 {
			return errors.New("usage: portfolioctl comments post <project-id> <text>")
		}
		if !store.Current().SignedIn() {
			return errors.New("not signed in, run portfolioctl login")
		}
		comment, err := c.PostComment(ctx, projectID, strings.Join(rest, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "posted", comment.ID)
		return nil

	case "delete":
		if len(rest) != 1 {
			return errors.New("usage: portfolioctl comments delete <project-id> <comment-id>")
		}
		deleted, err := c.DeleteComment(ctx, projectID, rest[0])
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Fprintln(os.Stdout, "nothing to delete")
			return nil
		}
		fmt.Fprintln(os.Stdout, "deleted", rest[0])
		return nil

	default:
		return fmt.Errorf("unknown comments subcommand: %s", sub)
	}
}

func printComments(w io.Writer, p *panel.CommentsPanel, comments []domain.Comment, now time.Time) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments yet. Be the first!")
		return
	}
	for _, c := range comments {
		fmt.Fprintf(w, "%s · %s\n    %s\n", p.AuthorLabel(c), panel.FormatAge(now, c.CreatedAt), c.Content)
	}
}
