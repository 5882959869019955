package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"srcmap/internal/source"
)

var locateCmd = &cobra.Command{
	Use:   "locate <mount>:<path> <offset>",
	Short: "Print relpath:row:col for a byte offset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session) error {
			return runLocate(cmd.OutOrStdout(), sess, args[0], args[1])
		})
	},
}

var lineCmd = &cobra.Command{
	Use:   "line <mount>:<path> <row>",
	Short: "Print one source line (rows start at 1)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session) error {
			return runLine(cmd.OutOrStdout(), sess, args[0], args[1])
		})
	},
}

var spanCmd = &cobra.Command{
	Use:   "span <mount>:<path> <offset> <length>",
	Short: "Print the text covered by a byte span",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session) error {
			return runSpan(cmd.OutOrStdout(), sess, args[0], args[1], args[2])
		})
	},
}

var relpathCmd = &cobra.Command{
	Use:   "relpath <target> [dir]",
	Short: "Print the shortest relative path from dir (default: --cwd) to target",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := cmd.Root().PersistentFlags().GetString("cwd")
		if err != nil {
			return fmt.Errorf("failed to get cwd flag: %w", err)
		}
		if len(args) == 2 {
			dir = args[1]
		}
		return runRelpath(cmd.OutOrStdout(), args[0], dir)
	},
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(*session) error) error {
	sess, cleanup, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(sess)
}

func runLocate(out io.Writer, sess *session, fileArg, offsetArg string) error {
	id, err := sess.load(fileArg)
	if err != nil {
		return err
	}
	offset, err := parseUint32("offset", offsetArg)
	if err != nil {
		return err
	}
	info, err := sess.lookup.Line(source.Span{File: id, Offset: offset})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s:%d:%d\n", info.RelativeFileName, info.Row, info.Col)
	return err
}

func runLine(out io.Writer, sess *session, fileArg, rowArg string) error {
	id, err := sess.load(fileArg)
	if err != nil {
		return err
	}
	row, err := strconv.Atoi(rowArg)
	if err != nil {
		return fmt.Errorf("invalid row %q: %w", rowArg, err)
	}
	line, err := sess.sm.SourceLine(id, row)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, line)
	return err
}

func runSpan(out io.Writer, sess *session, fileArg, offsetArg, lengthArg string) error {
	id, err := sess.load(fileArg)
	if err != nil {
		return err
	}
	offset, err := parseUint32("offset", offsetArg)
	if err != nil {
		return err
	}
	length, err := parseUint32("length", lengthArg)
	if err != nil {
		return err
	}
	text, err := sess.lookup.Text(source.Span{File: id, Offset: offset, Length: length})
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, text)
	return err
}

func runRelpath(out io.Writer, target, dir string) error {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = wd
	}
	_, err := fmt.Fprintln(out, source.MinimalRelativePath(target, dir))
	return err
}
