package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cantrace/internal/analysis"
	"cantrace/internal/convert"
	"cantrace/internal/logging"
	"cantrace/internal/serialport"
	"cantrace/pkg/canlog"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "cantrace",
		Short: "cantrace - CAN log to trace converter",
		Long: `cantrace converts CAN bus logs (candump, candump -L, SLCAN, SocketCAN pcap)
into the text trace formats read by PCAN-View and similar bus analysis tools.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log skipped lines and run statistics to stderr")

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newDialectsCmd())
	return rootCmd
}

func newConvertCmd() *cobra.Command {
	var (
		opts     convert.Options
		output   string
		device   string
		portOpts serialport.PortOptions
	)

	cmd := &cobra.Command{
		Use:   "convert INPUT [OUTPUT]",
		Short: "Convert a CAN log into a trace",
		Long: `Convert a CAN log into a trace.

INPUT is a file or - for standard input. The trace is written to OUTPUT, to the
file given with --output, or to standard output.

With --serial the frames are read live from an SLCAN adapter instead of INPUT
until the command is interrupted. OUTPUT is then the only argument.`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if device != "" {
				if len(args) > 1 {
					return fmt.Errorf("--serial takes at most one argument, the output file")
				}
				if !cmd.Flags().Changed("dialect") {
					opts.Dialect = string(canlog.DialectSLCAN)
				}
				target, err := resolveOutput(append([]string{""}, args...), output)
				if err != nil {
					return err
				}
				return captureSerial(cmd, device, portOpts, opts, target)
			}

			if len(args) == 0 {
				return fmt.Errorf("missing INPUT argument")
			}
			target, err := resolveOutput(args, output)
			if err != nil {
				return err
			}
			_, err = convert.ConvertFile(cmd.Context(), opts, args[0], target,
				convert.Stdio{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: standard output)")
	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "Input dialect: "+dialectNames()+" (default candump-log, slcan with --serial)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: pcan, trc or jsonl (default depends on the dialect)")
	cmd.Flags().StringVar(&opts.Overflow, "overflow", "", "Records with more than 8 data bytes in trc: widen, truncate or reject (default widen)")
	cmd.Flags().BoolVar(&opts.StrictHex, "strict-hex", false, "Skip candump-log lines with an odd number of data hex digits instead of dropping the last digit")
	cmd.Flags().StringVar(&opts.Location, "tz", "", "Time zone of the trc start time (default: $"+convert.LocationEnv+" or local time)")
	cmd.Flags().StringVar(&opts.Interface, "interface", "", "Interface name for captures that do not record one (default can0)")

	cmd.Flags().StringVar(&device, "serial", "", "Capture live from the SLCAN adapter at this serial device")
	cmd.Flags().IntVar(&portOpts.BaudRate, "baud", 0, "Serial baud rate (default 115200)")
	cmd.Flags().IntVar(&portOpts.DataBits, "data-bits", 0, "Serial data bits, 5 to 8 (default 8)")
	cmd.Flags().IntVar(&portOpts.StopBits, "stop-bits", 0, "Serial stop bits, 1 or 2 (default 1)")
	cmd.Flags().StringVar(&portOpts.Parity, "parity", "", "Serial parity: N, E or O (default N)")
	cmd.Flags().StringVar(&portOpts.Bitrate, "bitrate", "", "CAN bitrate of the SLCAN adapter, 10k to 1m (default 500k)")
	return cmd
}

// resolveOutput picks the output path from the second positional argument or
// the --output flag. Giving both with different values is an error.
func resolveOutput(args []string, flag string) (string, error) {
	if len(args) < 2 {
		return flag, nil
	}
	if flag != "" && flag != args[1] {
		return "", fmt.Errorf("output given twice: %q and --output %q", args[1], flag)
	}
	return args[1], nil
}

func captureSerial(cmd *cobra.Command, device string, portOpts serialport.PortOptions, opts convert.Options, output string) error {
	opts, err := opts.Normalize()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	capture, err := serialport.Open(device, portOpts)
	if err != nil {
		return err
	}
	defer capture.Close()
	// Closing the port is the only way to interrupt a blocked read.
	stopClose := context.AfterFunc(ctx, func() { capture.Close() })
	defer stopClose()

	out, err := convert.CreateOutput(output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer out.Close()

	slog.Info("Capturing", "device", device)
	stats, err := convert.Convert(ctx, opts, capture, out)
	if err != nil {
		return err
	}
	slog.Info("Capture stopped", "records", stats.Records, "skipped", stats.Skipped)
	return nil
}

func newStatsCmd() *cobra.Command {
	var (
		opts   convert.Options
		report string
	)

	cmd := &cobra.Command{
		Use:   "stats INPUT",
		Short: "Count frames and send periods per arbitration id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := analysis.ParseReportFormat(report)
			if err != nil {
				return err
			}
			normalized, err := opts.Normalize()
			if err != nil {
				return err
			}

			in, err := convert.OpenInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			source, err := normalized.NewSource(in)
			if err != nil {
				return err
			}
			summary, err := analysis.Collect(source)
			if err != nil {
				return err
			}
			if summary.Frames == 0 {
				return convert.ErrNoParsableInput
			}
			return summary.Write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "Input dialect: "+dialectNames()+" (default candump-log)")
	cmd.Flags().StringVar(&opts.Interface, "interface", "", "Interface name for captures that do not record one (default can0)")
	cmd.Flags().StringVarP(&report, "report", "r", string(analysis.ReportText), "Report format: text, markdown or html")
	return cmd
}

func newDialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the input dialects and the formats they convert to",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for _, d := range canlog.Dialects() {
				var formats []string
				for _, f := range convert.CompatibleFormats(d) {
					formats = append(formats, string(f))
				}
				fmt.Fprintf(w, "%-12s %-11s %s\n", d, strings.Join(formats, ","), d.Description())
			}
		},
	}
}

func dialectNames() string {
	var names []string
	for _, d := range canlog.Dialects() {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
