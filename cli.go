/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Seednode/flames/games"
)

func newPlayCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "play NAME1 NAME2",
		Short: "Compute a FLAMES result once and print it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name1 := strings.TrimSpace(args[0])
			name2 := strings.TrimSpace(args[1])
			if name1 == "" || name2 == "" {
				return errors.New("please enter both names")
			}

			r := games.Play(name1, name2)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}

			return printResult(cmd.OutOrStdout(), r)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")

	return cmd
}

// crossedOut renders letters with cancelled ones in brackets, e.g. "st[e][v][e]".
func crossedOut(letters games.Letters, crossed []bool) string {
	var b strings.Builder

	for i, c := range letters {
		if crossed[i] {
			b.WriteString("[" + string(c) + "]")
		} else {
			b.WriteByte(c)
		}
	}

	return b.String()
}

func printResult(w io.Writer, r games.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%-8s %s\n", r.Name1+":", crossedOut(r.Letters1, r.Cancellation.CrossedA))
	fmt.Fprintf(&b, "%-8s %s\n", r.Name2+":", crossedOut(r.Letters2, r.Cancellation.CrossedB))
	fmt.Fprintf(&b, "Count:   %d\n", r.Count)

	for _, line := range r.Log {
		fmt.Fprintf(&b, "  %s\n", line)
	}

	fmt.Fprintf(&b, "Result:  %s\n", r.ResultText())
	fmt.Fprintf(&b, "Meaning: %s\n", r.Meaning)

	_, err := io.WriteString(w, b.String())

	return err
}
