package controllers

import (
	"errors"
	"fmt"

	"gymdesk_go/middleware"
	"gymdesk_go/services"
	"gymdesk_go/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// ExportSettlement renders a settlement as an XLSX workbook. With ?store=true
// the file is uploaded to S3 and its URL returned instead of the bytes.
func (sc *SettlementController) ExportSettlement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid settlement ID"})
	}

	svc := services.NewSettlementService()
	settlement, lines, err := svc.Get(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrSettlementNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Settlement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch settlement"})
	}

	allocations, err := svc.AllocationsAll(uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch allocations"})
	}

	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "Summary"
	f.SetSheetName(f.GetSheetName(0), summarySheet)

	f.SetCellValue(summarySheet, "A1", "Settlement")
	f.SetCellValue(summarySheet, "B1", settlement.ID)
	f.SetCellValue(summarySheet, "A2", "Period")
	f.SetCellValue(summarySheet, "B2", fmt.Sprintf("%s - %s",
		settlement.PeriodStart.Format("2006-01-02"),
		settlement.PeriodEnd.Format("2006-01-02")))
	f.SetCellValue(summarySheet, "A3", "Status")
	f.SetCellValue(summarySheet, "B3", settlement.Status)
	f.SetCellValue(summarySheet, "A4", "Generated at")
	f.SetCellValue(summarySheet, "B4", settlement.GeneratedAt.Format("2006-01-02 15:04"))

	headers := []string{"Trainer ID", "Amount (cents)", "Attendance", "Unpaid", "Punch (cents)", "Time (cents)"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 6)
		f.SetCellValue(summarySheet, cell, header)
	}
	for row, line := range lines {
		values := []interface{}{line.TrainerID, line.AmountCents, line.AttendanceCount,
			line.UnpaidAttendanceCount, line.PunchCents, line.TimeCents}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+7)
			f.SetCellValue(summarySheet, cell, value)
		}
	}

	allocSheet := "Allocations"
	f.NewSheet(allocSheet)
	allocHeaders := []string{"Attendance ID", "Trainer ID", "Subscription ID", "Type", "Value (cents)", "Reason"}
	for i, header := range allocHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(allocSheet, cell, header)
	}
	for row, alloc := range allocations {
		subID := ""
		if alloc.SubscriptionID != nil {
			subID = fmt.Sprintf("%d", *alloc.SubscriptionID)
		}
		values := []interface{}{alloc.AttendanceID, alloc.TrainerID, subID,
			alloc.SubscriptionType, alloc.ValueCents, alloc.Reason}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(allocSheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render workbook"})
	}

	fileName := fmt.Sprintf("settlement_%d_%s.xlsx", settlement.ID, settlement.PeriodStart.Format("2006-01-02"))

	if c.Query("store") == "true" {
		storageService, err := storage.NewStorageService()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Storage not configured"})
		}
		url, err := storageService.UploadReport(buf.Bytes(), fileName,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store report"})
		}

		middleware.LogActivity(c, "CREATE", "settlement-reports", settlement.ID, fiber.Map{"url": url})

		return c.JSON(fiber.Map{"url": url})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(buf.Bytes())
}
