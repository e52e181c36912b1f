package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	uploaddomain "github.com/myinsta/portfolio-backend/internal/upload/domain"
)

func uploadCommand(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: portfolioctl upload <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	res, err := c.Upload(ctx, uploaddomain.File{Name: filepath.Base(args[0]), Data: data})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "url:      %s\noriginal: %s\nsize:     %dx%d\n", res.URL, res.OriginalURL, res.Width, res.Height)
	return nil
}
