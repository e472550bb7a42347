package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/studenthub/backend/internal/app/models"
)

// maxPortfolioActivities caps how many recent activities a portfolio lists.
const maxPortfolioActivities = 20

// RenderPortfolio renders a student's portfolio document: identity block,
// credential snapshot and the most recent activities.
func RenderPortfolio(student *models.Student, activities []models.Activity) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(13, 13, 13)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, "Smart Student Hub - Portfolio", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 12)
	doc.CellFormat(0, 6, fmt.Sprintf("Name: %s", student.Name), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Roll: %s", student.Roll), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Department: %s", student.Department), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Year: %d", student.Year), "", 1, "L", false, 0, "")
	doc.Ln(4)
	doc.CellFormat(0, 6, fmt.Sprintf("GPA: %.2f  Credits: %d", student.GPA, student.Credits), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Attendance: %.1f%%", student.AttendancePct), "", 1, "L", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 8, "Recent Activities", "", 1, "L", false, 0, "")
	doc.Ln(1)

	for i, a := range activities {
		if i >= maxPortfolioActivities {
			break
		}
		doc.SetFont("Helvetica", "", 12)
		line := fmt.Sprintf("%s [%s] - %s (%s)", a.Title, a.Type, a.Date.Format("2006-01-02"), a.Status)
		doc.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		if a.Description != "" {
			doc.SetFont("Helvetica", "", 10)
			doc.SetTextColor(102, 102, 102)
			doc.MultiCell(0, 5, a.Description, "", "L", false)
			doc.SetTextColor(0, 0, 0)
		}
		doc.Ln(1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render portfolio: %w", err)
	}
	return buf.Bytes(), nil
}
