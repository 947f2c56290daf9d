package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Veraticus/cordon/internal/cli"
	"github.com/Veraticus/cordon/internal/config"
)

func zonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List the zone directory with prices and localities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := config.LoadDirectory(nil)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(dir.Zones()))
			for _, z := range dir.Zones() {
				rows = append(rows, []string{z.Name, cli.FormatMoney(z.Price), strconv.Itoa(len(z.Localities)), strings.Join(z.Localities, ", ")})
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(cli.SubtleStyle).
				Headers("Cordón", "Precio", "#", "Localidades").
				Rows(rows...).
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return cli.TableHeaderStyle
					}
					return cli.TableCellStyle
				})

			printLine(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
