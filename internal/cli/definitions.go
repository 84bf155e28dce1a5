package cli

import (
	"fmt"
	"io"

	"clubip-api/internal/lookup"

	"github.com/spf13/cobra"
)

type DefinitionInfo struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Kind   string   `json:"kind"`
	Param  string   `json:"param"`
	Limit  int      `json:"limit"`
	Fields []string `json:"fields"`
}

func NewDefinitionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "definitions",
		Short:         "List the registered lookup endpoints",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			svc, err := offlineService(rootOpts)
			if err != nil {
				_ = f.Error(ErrCodeConfig, err.Error())
				return WrapExitError(ExitCommandError, "load lookups", err)
			}
			infos := make([]DefinitionInfo, 0, len(svc.Definitions()))
			for _, d := range svc.Definitions() {
				infos = append(infos, describe(d))
			}
			return f.Success(infos, func(w io.Writer) {
				for _, i := range infos {
					fmt.Fprintf(w, "%-12s %-14s %-6s ?%s= limit=%d\n", i.Name, i.Path, i.Kind, i.Param, i.Limit)
				}
			})
		},
	}
}

func describe(d *lookup.Definition) DefinitionInfo {
	fields := make([]string, 0, len(d.Fields))
	for _, fl := range d.Fields {
		fields = append(fields, fl.Name)
	}
	return DefinitionInfo{Name: d.Name, Path: d.Path, Kind: string(d.Kind), Param: d.Param, Limit: d.Limit, Fields: fields}
}

// offlineService：只用于计划与列举，不连接仓库
func offlineService(opts *RootOptions) (*lookup.Service, error) {
	defs, err := opts.definitions()
	if err != nil {
		return nil, err
	}
	return lookup.NewService(nil, defs)
}
