package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salonflow/internal/domain"
	"salonflow/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Напоминания"

// StatsExporter пишет сводку и историю напоминаний салона в Excel файл.
type StatsExporter struct {
	reminders domain.ReminderStore
	path      string
	logger    *zerolog.Logger
}

func NewStatsExporter(reminders domain.ReminderStore, path string, logger *zerolog.Logger) *StatsExporter {
	return &StatsExporter{
		reminders: reminders,
		path:      path,
		logger:    logger,
	}
}

// Export создает Excel файл со статистикой напоминаний по салону.
func (e *StatsExporter) Export(ctx context.Context, salonID int64) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	stats, err := e.reminders.ReminderStats(ctx, salonID)
	if err != nil {
		return "", fmt.Errorf("error getting reminder stats: %v", err)
	}

	rows, err := e.reminders.RemindersBySalon(ctx, salonID)
	if err != nil {
		return "", fmt.Errorf("error getting reminders: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Салон %d — статистика напоминаний на %s",
		salonID, time.Now().Format("02.01.2006")))
	_ = f.MergeCell(sheetName, "A1", "G1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	e.writeSummary(f, stats)
	e.writeRows(f, rows)

	_ = f.SetColWidth(sheetName, "A", "G", 22)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reminders_salon%d_%s.xlsx", salonID, time.Now().Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func (e *StatsExporter) writeSummary(f *excelize.File, stats *models.ReminderStats) {
	summary := [][2]interface{}{
		{"Всего напоминаний", stats.Total},
		{"Отправлено", stats.Sent},
		{"Подтверждено", stats.Confirmed},
		{"Отменено", stats.Cancelled},
		{"Не доставлено", stats.Failed},
		{"Доставляемость, %", stats.DeliveryRate},
		{"Отклик, %", stats.ResponseRate},
	}

	for i, pair := range summary {
		nameCell, _ := excelize.CoordinatesToCellName(1, 3+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, 3+i)
		_ = f.SetCellValue(sheetName, nameCell, pair[0])
		_ = f.SetCellValue(sheetName, valueCell, pair[1])
	}
}

func (e *StatsExporter) writeRows(f *excelize.File, rows []models.Reminder) {
	headerRow := 12
	headers := []string{"ID", "Запись", "Статус", "Попытки", "Отправлено", "Ответ", "Текст ответа"}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, rem := range rows {
		row := headerRow + 1 + i
		sentAt := ""
		if rem.SentAt != nil {
			sentAt = rem.SentAt.Format("02.01.2006 15:04")
		}
		values := []interface{}{
			rem.ID,
			rem.BookingID,
			string(rem.Status),
			rem.Attempts,
			sentAt,
			string(rem.ResponseAction),
			rem.ResponseText,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}
}
