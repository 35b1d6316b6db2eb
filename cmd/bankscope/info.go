/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/friendsincode/bankscope/internal/sidecar"
)

var infoFormat string

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Summarize a SoundbanksInfo.json project file",
	Long: `info reads the project-wide SoundbanksInfo.json written next to generated
banks and lists the banks it declares, their languages and media counts.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "table", "Output format: table, json or yaml")
}

func runInfo(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	format, err := parseFormat(infoFormat)
	if err != nil {
		return err
	}

	path := args[0]
	if !sidecar.IsInfoFile(path) {
		logger.Warn().Str("path", path).Str("expected", sidecar.InfoFileName).Msg("file name does not look like a project info file")
	}

	info, err := sidecar.LoadInfo(path)
	if err != nil {
		return err
	}
	for _, s := range info.Skipped {
		logger.Warn().Str("path", path).Str("entry", s).Msg("skipped malformed entry")
	}

	out := cmd.OutOrStdout()
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return renderInfo(out, info)
	}
}

func renderInfo(w io.Writer, info *sidecar.Info) error {
	fmt.Fprintf(w, "platform:  %s\n", orDash(info.Platform))
	fmt.Fprintf(w, "languages: %d\n\n", len(info.Languages()))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLANGUAGE\tID\tTYPE\tMEDIA\tPATH")
	for _, b := range info.Banks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			orDash(b.ShortName), orDash(b.Language), orDash(b.ID), orDash(b.Type), len(b.Media), b.Path)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	_, err := fmt.Fprintf(w, "%d bank(s)\n", len(info.Banks))
	return err
}
