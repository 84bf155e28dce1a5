// 包 cli：clubip-cli 命令行工具，在终端复用与 HTTP 端点相同的校验与查询逻辑
package cli

import (
	"fmt"
	"slices"

	"clubip-api/internal/config"
	"clubip-api/internal/lookup"
	"clubip-api/internal/store"

	"github.com/spf13/cobra"
)

// RootOptions：全局标志
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Lookups string

	// open：打开仓库会话，测试中替换为本地库
	open func(config.Warehouse) (lookup.Querier, func() error, error)
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{open: openStore})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clubip-cli",
		Short: "Club and Azure IPv4 lookups from the terminal",
		Long:  "Classify IPv4 queries and run the same lookups served by the clubip API against the configured warehouse.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Lookups, "lookups", "", "YAML file with extra lookup definitions (default $LOOKUPS_FILE)")

	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewDefinitionsCommand(opts))
	cmd.AddCommand(NewLookupCommand(opts))
	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// definitions：--lookups 优先于 LOOKUPS_FILE
func (o *RootOptions) definitions() ([]*lookup.Definition, error) {
	path := o.Lookups
	if path == "" {
		path = config.FromEnv().LookupsFile
	}
	return lookup.LoadDefinitions(path)
}

func openStore(w config.Warehouse) (lookup.Querier, func() error, error) {
	s, err := store.Open(w)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
