package main

import (
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/rmsnorm/internal/envconfig"
	"github.com/born-ml/rmsnorm/internal/variant"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "variants",
		Aliases: []string{"ls"},
		Short:   "List compiled kernel variants",
		Args:    cobra.ExactArgs(0),
		RunE:    VariantsHandler,
	}
}

// VariantsHandler prints the variant table.
func VariantsHandler(cmd *cobra.Command, args []string) error {
	var data [][]string
	for i, v := range variant.Table {
		data = append(data, []string{
			strconv.Itoa(i),
			v.Key(),
			strconv.Itoa(v.BlockSize),
			strconv.FormatFloat(float64(v.Epsilon), 'g', -1, 32),
		})
	}
	writeTable(cmd.OutOrStdout(), []string{"INDEX", "KEY", "BLOCK_SIZE", "EPS"}, data)
	return nil
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show environment configuration",
		Args:  cobra.ExactArgs(0),
		RunE:  EnvHandler,
	}
}

// EnvHandler prints every RMSNORM_* variable with its effective value.
func EnvHandler(cmd *cobra.Command, args []string) error {
	vars := envconfig.AsMap()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := envconfig.Values()
	var data [][]string
	for _, k := range keys {
		v := vars[k]
		data = append(data, []string{v.Name, values[k], v.Description})
	}
	writeTable(cmd.OutOrStdout(), []string{"NAME", "VALUE", "DESCRIPTION"}, data)
	return nil
}

func writeTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
