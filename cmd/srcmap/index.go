package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the on-disk line index",
}

var indexDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the index directory from srcmap.toml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session) error {
			return runIndexDir(cmd.OutOrStdout(), sess)
		})
	},
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached line table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session) error {
			return runIndexClear(cmd.OutOrStdout(), sess)
		})
	},
}

func init() {
	indexCmd.AddCommand(indexDirCmd)
	indexCmd.AddCommand(indexClearCmd)
}

var errNoIndex = errors.New("no line index configured (set [index].dir in srcmap.toml)")

func runIndexDir(out io.Writer, sess *session) error {
	if sess.index == nil {
		return errNoIndex
	}
	_, err := fmt.Fprintln(out, sess.index.Dir())
	return err
}

func runIndexClear(out io.Writer, sess *session) error {
	if sess.index == nil {
		return errNoIndex
	}
	if err := sess.index.DropAll(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "cleared %s\n", sess.index.Dir())
	return err
}
