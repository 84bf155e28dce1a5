package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"clubip-api/internal/config"
	"clubip-api/internal/lookup"

	"github.com/spf13/cobra"
)

type lookupFlags struct {
	timeout time.Duration
}

func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	fl := &lookupFlags{}
	cmd := &cobra.Command{
		Use:   "lookup <definition> [query]",
		Short: "Run one lookup against the configured warehouse",
		Long: `Run a registered lookup (see "definitions") with the given query and print
the same body the HTTP endpoint returns. Warehouse settings come from the
environment, exactly as for the server.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var q string
			if len(args) == 2 {
				q = args[1]
			}
			return runLookup(cmd.Context(), rootOpts, fl, args[0], q, cmd)
		},
	}
	cmd.Flags().DurationVar(&fl.timeout, "timeout", 30*time.Second, "query timeout")
	return cmd
}

func runLookup(ctx context.Context, opts *RootOptions, fl *lookupFlags, name, raw string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	defs, err := opts.definitions()
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error())
		return WrapExitError(ExitCommandError, "load lookups", err)
	}
	cfg := config.FromEnv()
	q, closeFn, err := opts.open(cfg.Warehouse)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error())
		return WrapExitError(ExitCommandError, "open warehouse", err)
	}
	defer closeFn()
	svc, err := lookup.NewService(q, defs)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error())
		return WrapExitError(ExitCommandError, "lookups", err)
	}
	if _, ok := svc.Definition(name); !ok {
		msg := fmt.Sprintf("unknown lookup %q", name)
		_ = f.Error(ErrCodeInput, msg)
		return WrapExitError(ExitCommandError, msg, lookup.ErrUnknownLookup)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if fl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fl.timeout)
		defer cancel()
	}
	f.VerboseLog("lookup %s query=%q driver=%s", name, raw, cfg.Warehouse.Driver)
	begin := time.Now()
	res, err := svc.Run(ctx, name, raw)
	if err != nil {
		var ie *lookup.InputError
		if errors.As(err, &ie) {
			_ = f.Error(ErrCodeInput, ie.Message)
			return WrapExitError(ExitFailure, ie.Message, err)
		}
		_ = f.Error(ErrCodeBackend, err.Error())
		return WrapExitError(ExitFailure, "lookup failed", err)
	}
	f.VerboseLog("%d record(s) in %s", len(res.Records), time.Since(begin).Round(time.Millisecond))
	return f.Success(res.Envelope(), func(w io.Writer) { printResult(w, res) })
}

func printResult(w io.Writer, res *lookup.Result) {
	if res.Mode != "" && res.Def.Envelope == lookup.EnvelopeMatches {
		fmt.Fprintf(w, "query=%s mode=%s approximate=%t\n", res.Query, res.Mode, res.Approximate)
	}
	if res.Note != "" {
		fmt.Fprintf(w, "note: %s\n", res.Note)
	}
	if res.Geo != nil {
		fmt.Fprintf(w, "geo: country=%s city=%s asn=%d org=%s\n", res.Geo.Country, res.Geo.City, res.Geo.ASN, res.Geo.ASOrg)
	}
	for i, r := range res.Records {
		fmt.Fprintf(w, "[%d]", i+1)
		for _, kv := range r {
			if kv.Value == nil {
				continue
			}
			fmt.Fprintf(w, " %s=%v", kv.Key, kv.Value)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d record(s)\n", len(res.Records))
}
