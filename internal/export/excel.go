package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jobflow-dashboard/internal/views"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary      = "Summary"
	SheetJobURLs      = "Job URLs"
	SheetApplications = "Applications"
)

// XLSX 生成三个工作表：统计、岗位链接、申请记录
func XLSX(w io.Writer, d Data) error {
	f, err := buildWorkbook(d)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("写出Excel失败: %w", err)
	}
	return nil
}

// SaveXLSX 保存到文件，自动补全 .xlsx 扩展名，返回实际路径
func SaveXLSX(path string, d Data) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := buildWorkbook(d)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		// 直接保存失败时先写入内存再落盘
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return "", fmt.Errorf("保存Excel失败 (%v): %w", err, writeErr)
		}
		if fileErr := os.WriteFile(path, buf.Bytes(), 0o644); fileErr != nil {
			return "", fmt.Errorf("保存Excel失败 (%v): %w", err, fileErr)
		}
	}
	return path, nil
}

func buildWorkbook(d Data) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("创建工作表失败: %w", err)
	}
	for _, name := range []string{SheetJobURLs, SheetApplications} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("创建工作表 %s 失败: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}

	if err := writeSummary(f, d, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	urlRows := make([][]string, 0, len(d.JobURLs))
	for _, u := range d.JobURLs {
		urlRows = append(urlRows, jobURLRow(u))
	}
	if err := writeTable(f, SheetJobURLs, jobURLHeader, urlRows, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	appRows := make([][]string, 0, len(d.Applications))
	for _, a := range d.Applications {
		appRows = append(appRows, applicationRow(a))
	}
	if err := writeTable(f, SheetApplications, applicationHeader, appRows, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeSummary(f *excelize.File, d Data, headerStyle int) error {
	f.SetColWidth(SheetSummary, "A", "A", 25)
	f.SetColWidth(SheetSummary, "B", "B", 30)

	if err := f.SetSheetRow(SheetSummary, "A1", &[]any{"JobFlow Export", ""}); err != nil {
		return fmt.Errorf("写入统计表失败: %w", err)
	}
	f.SetCellStyle(SheetSummary, "A1", "B1", headerStyle)

	rows := [][]any{
		{"Exported", d.ExportedAt.Format("2006-01-02 15:04:05")},
		{"Account", d.Email},
	}
	for _, c := range views.StatsCards(d.Stats) {
		rows = append(rows, []any{c.Title, c.Value})
	}
	rows = append(rows,
		[]any{"Job URLs", len(d.JobURLs)},
		[]any{"Applications", len(d.Applications)},
	)

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(SheetSummary, cell, &r); err != nil {
			return fmt.Errorf("写入统计表失败: %w", err)
		}
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []string, rows [][]string, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("写入表头 %s 失败: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("写入 %s 第%d行失败: %w", sheet, i+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	f.SetColWidth(sheet, "A", lastCol, 18)
	return nil
}
