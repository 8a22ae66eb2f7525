package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"bidflow/internal/models"
)

const reportSheet = "Bid Requests"

// ReportColumns is the fixed output column order.
var ReportColumns = []string{
	"Project Name", "Contractor", "Bid Due Date", "Job Walk", "Description", "Contractor Count",
}

// WriteReport serializes consolidated projects to a single-sheet Excel file,
// header row plus one row per project, overwriting any existing file at path.
func WriteReport(path string, projects []models.ConsolidatedProject) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	// Drop the default sheet so the workbook has exactly one.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	header := make([]interface{}, len(ReportColumns))
	for i, col := range ReportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range projects {
		row := []interface{}{
			p.ProjectName,
			ContractorList(p),
			p.BidDueDate,
			p.JobWalk,
			p.Description,
			p.ContractorCount,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}
