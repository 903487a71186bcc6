package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sir_venger/charimg_lite/pkg/assetclient"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	server  string
	timeout time.Duration
	quiet   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "charctl",
		Short:        "Upload and fetch character images",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.server, "server", envOr("CHARIMG_SERVER", "http://localhost:3000"), "image service base URL")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "disable progress output")

	cmd.AddCommand(newUploadCmd(opts), newGetCmd(opts))
	return cmd
}

func (o *rootOptions) client(cmd *cobra.Command) assetclient.Client {
	var progress io.Writer
	if !o.quiet {
		progress = cmd.ErrOrStderr()
	}
	return assetclient.New(o.server, progress)
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

func newUploadCmd(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Store an image for a character name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			res, err := opts.client(cmd).Upload(ctx, assetclient.UploadRequest{
				Name:     name,
				FileName: filepath.Base(args[0]),
				Reader:   f,
				Size:     info.Size(),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", res.Message, res.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "character name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Resolve a character name and optionally download the image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			cli := opts.client(cmd)
			res, err := cli.Lookup(ctx, args[0])
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.ImagePath)
				return nil
			}
			if output == "." {
				output = res.ImagePath
			}

			body, err := cli.Fetch(ctx, res.ImagePath)
			if err != nil {
				return err
			}
			defer body.Close()

			dst, err := os.Create(output)
			if err != nil {
				return err
			}
			if _, err = io.Copy(dst, body); err != nil {
				_ = dst.Close()
				return err
			}
			return dst.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "download to this path (\".\" keeps the stored file name)")
	return cmd
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
