package cli

import (
	"fmt"
	"io"
	"strings"

	"clubip-api/internal/ipquery"

	"github.com/spf13/cobra"
)

// ClassifyResult：分类结果及各查询定义将采用的计划
type ClassifyResult struct {
	Query  string       `json:"query"`
	Kind   string       `json:"kind"`
	Octets []string     `json:"octets,omitempty"`
	Plans  []PlanReport `json:"plans"`
}

type PlanReport struct {
	Lookup      string `json:"lookup"`
	Mode        string `json:"mode,omitempty"`
	Bind        string `json:"bind,omitempty"`
	Approximate bool   `json:"approximate,omitempty"`
	Error       string `json:"error,omitempty"`
}

func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "classify <query>",
		Short:         "Classify an IPv4 query and show the plan each lookup would use",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(rootOpts, args[0], cmd)
		},
	}
}

func runClassify(opts *RootOptions, raw string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	svc, err := offlineService(opts)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error())
		return WrapExitError(ExitCommandError, "load lookups", err)
	}
	c := ipquery.Classify(strings.TrimSpace(raw))
	res := ClassifyResult{Query: c.Query, Kind: c.Kind.String(), Octets: c.Octets()}
	for _, d := range svc.Definitions() {
		p, _, err := svc.Plan(d, raw)
		r := PlanReport{Lookup: d.Name}
		if err != nil {
			r.Error = err.Error()
		} else {
			r.Mode, r.Bind, r.Approximate = string(p.Mode), p.Bind, p.Approximate
		}
		res.Plans = append(res.Plans, r)
	}
	return f.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %s\n", res.Query, res.Kind)
		for _, r := range res.Plans {
			if r.Error != "" {
				fmt.Fprintf(w, "  %-12s rejected: %s\n", r.Lookup, r.Error)
				continue
			}
			fmt.Fprintf(w, "  %-12s %s %q approximate=%t\n", r.Lookup, r.Mode, r.Bind, r.Approximate)
		}
	})
}
