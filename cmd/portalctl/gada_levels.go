package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"debo-engineering/job-portal/internal/services"
)

var gadaLevelsCmd = &cobra.Command{
	Use:   "gada-levels",
	Short: "Show the Gada intern levels",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(titleStyle.Render("Gada Intern Levels"))
		fmt.Println(renderGadaLevels(services.GadaLevels()))
	},
}

func renderGadaLevels(levels []services.GadaLevel) string {
	rows := make([][]string, 0, len(levels))
	for i, level := range levels {
		internship, _ := services.DeriveInternshipType(level.ID)
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			level.ID,
			level.Name,
			fmt.Sprintf("%d weeks", level.MinDuration),
			string(internship),
			strings.Join(level.Privileges, ", "),
		})
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "NAME", "MIN DURATION", "INTERNSHIP", "PRIVILEGES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
