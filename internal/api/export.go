package api

import (
	"fmt"
	"net/http"

	"strength-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ExportHistory renders the history window as an xlsx workbook with the
// flat spreadsheet layout: one row per snapshot, 1H/4H/D columns per
// currency, newest first.
func (h *APIHandler) ExportHistory(c *gin.Context) {
	window, ok := periodWindow(c.Query("period"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be week or month"})
		return
	}
	entries, err := h.snapshots.Range(window)
	if err != nil {
		h.storageError(c, err)
		return
	}

	file, err := buildHistoryWorkbook(entries)
	if err != nil {
		logrus.WithError(err).Error("failed to build history workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	defer file.Close()

	buf, err := file.WriteToBuffer()
	if err != nil {
		logrus.WithError(err).Error("failed to serialize history workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="strength-history.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

const exportSheet = "History"

func buildHistoryWorkbook(entries []models.HistoryEntry) (*excelize.File, error) {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", exportSheet)

	headers := []interface{}{"TIME"}
	for _, ccy := range models.Currencies {
		headers = append(headers, "1H_"+ccy, "4H_"+ccy, "D_"+ccy)
	}
	if err := writeRow(file, 1, headers); err != nil {
		return nil, err
	}

	for i, entry := range entries {
		row := []interface{}{entry.Timestamp.Format("2006-01-02 15:04")}
		for _, ccy := range models.Currencies {
			row = append(row,
				entry.Series.H1[ccy],
				entry.Series.H4[ccy],
				entry.Series.Daily[ccy],
			)
		}
		if err := writeRow(file, i+2, row); err != nil {
			return nil, err
		}
	}
	return file, nil
}

func writeRow(file *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := file.SetSheetRow(exportSheet, cell, &values); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", row, err)
	}
	return nil
}
