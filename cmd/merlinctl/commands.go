package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/danmuck/merlinctl/internal/merlin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newVarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vars",
		Short: "List catalogue variables and commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VARIABLE\tACCESS\tKIND\tFIELD")
			for _, v := range merlin.Variables() {
				e, _ := merlin.Lookup(v)
				access := "rw"
				if !e.Settable() {
					access = "ro"
				}
				field := e.Field
				if len(e.Fields) > 0 {
					field = strings.Join(e.Fields, "+")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v, access, e.Kind, field)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "COMMAND\tFIELD")
			for _, c := range merlin.Commands() {
				fmt.Fprintf(w, "%s\t%s\n", c, c.Wire())
			}
			return w.Flush()
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get VARIABLE...",
		Short: "Read variables from the detector",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVariables(args)
			if err != nil {
				return err
			}
			conn, _, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			for _, v := range vars {
				val, err := conn.Get(v)
				if err != nil {
					return fmt.Errorf("get %s: %w", v, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", v, formatValue(val))
			}
			return nil
		},
	}
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set VARIABLE VALUE [VARIABLE VALUE]...",
		Short: "Write variables to the detector",
		Long: `Write one or more variables in order. Values are validated before anything is sent.
Per-detector variables take DETECTORS:VALUE, for example ONE|TWO:40.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("want VARIABLE VALUE pairs, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseAssignments(args)
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return err
			}
			conn, _, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := conn.Apply(p); err != nil {
				return err
			}
			log.Info().Int("count", len(p.Steps)).Msg("merlinctl.set applied")
			return nil
		},
	}
}

func newExecCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec COMMAND",
		Short: "Send a command such as start, stop or abort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := merlin.ParseCommand(args[0])
			if err != nil {
				return err
			}
			conn, _, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			return conn.Exec(c)
		},
	}
}

func newPresetCmd(opts *rootOptions) *cobra.Command {
	var (
		scanSize int
		depth    int
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "preset NAME",
		Short: "Apply a configured preset, or the built-in 4dstem preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			p, ok := cfg.Preset(args[0])
			if !ok && strings.EqualFold(args[0], "4dstem") {
				p, ok = merlin.FourDSTEM(scanSize, depth), true
			}
			if !ok {
				return fmt.Errorf("unknown preset %q", args[0])
			}
			if err := p.Validate(); err != nil {
				return err
			}
			if dryRun {
				for _, st := range p.Steps {
					fmt.Fprintf(cmd.OutOrStdout(), "set %s = %s\n", st.Variable, formatValue(st.Value))
				}
				if p.Exec != 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "exec %s\n", p.Exec)
				}
				return nil
			}
			conn, _, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			return conn.Apply(p)
		},
	}
	cmd.Flags().IntVar(&scanSize, "scan-size", 256*256, "4dstem: frames per scan")
	cmd.Flags().IntVar(&depth, "depth", 12, "4dstem: counter depth (1, 6 or 12)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and print the steps without connecting")
	return cmd
}

func newWaitCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "wait STATUS",
		Short: "Poll until the detector reports STATUS (idle, busy, armed, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			want, err := parseStatus(args[0])
			if err != nil {
				return err
			}
			conn, cfg, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return merlin.WaitForStatus(ctx, conn, want, cfg.Session().Poll)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up after this long")
	return cmd
}
