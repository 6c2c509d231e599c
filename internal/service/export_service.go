package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"csa-reg/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 表头为 序号 + 各叶子题目的完整路径（分组标题以 / 连接），每个报名者一行。
type ExportService interface {
	ExportApplicants(ctx context.Context, activityID int64) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportApplicants(ctx context.Context, activityID int64) (*bytes.Buffer, string, error) {
	activity, tree, answers, err := loadApplicants(ctx, s.repo, activityID)
	if err != nil {
		if !errors.Is(err, ErrActivityNotFound) {
			s.logger.Error("查询报名者失败", zap.Int64("activity_id", activityID), zap.Error(err))
		}
		return nil, "", err
	}
	leaves := tree.Leaves()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "报名信息"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	f.SetCellValue(sheetName, cell(colName(0), 1), "序号")
	f.SetColWidth(sheetName, colName(0), colName(0), 8)
	for i, leaf := range leaves {
		col := colName(i + 1)
		f.SetCellValue(sheetName, cell(col, 1), strings.Join(leaf.Path, "/"))
		f.SetColWidth(sheetName, col, col, 20)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(leaves)), 1), headerStyle)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// 数据行
	row := 2
	for _, n := range sortedApplicants(answers) {
		values := answers[n]
		f.SetCellValue(sheetName, cell(colName(0), row), n)
		for i, leaf := range leaves {
			if v, ok := values[leaf.Node.ID]; ok {
				f.SetCellValue(sheetName, cell(colName(i+1), row), v)
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("报名信息_%s.xlsx", filenameReplacer.Replace(activity.Title))
	return buf, filename, nil
}

// ── 辅助函数 ──

// 文件名中不允许出现的字符
var filenameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
