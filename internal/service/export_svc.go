package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dropship_admin_v1/internal/api/dto"
	rq "dropship_admin_v1/pkg/recordquery"
)

// ExportService 列表导出为 CSV 并上传到存储
type ExportService struct {
	storage StorageProvider
	log     *zap.Logger
}

// NewExportService 创建导出服务
func NewExportService(storage StorageProvider, log *zap.Logger) *ExportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportService{storage: storage, log: log.Named("export")}
}

// ExportCSV 按查询条件导出全部匹配记录 (忽略分页)，列为 Schema 全部字段
func ExportCSV[T any](ctx context.Context, s *ExportService, svc *CatalogService[T], state rq.State) (*dto.ExportResponse, error) {
	records, err := svc.All(ctx, state)
	if err != nil {
		return nil, err
	}

	data, err := EncodeCSV(svc.Engine(), records)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_%s.csv", svc.Resource(), time.Now().Format("20060102150405"))
	url, err := s.storage.Upload(ctx, data, filename, "text/csv")
	if err != nil {
		return nil, err
	}

	s.log.Info("export uploaded",
		zap.String("resource", svc.Resource()),
		zap.Int("count", len(records)),
		zap.String("url", url),
	)
	return &dto.ExportResponse{URL: url, Count: len(records)}, nil
}

// EncodeCSV 表头为字段名，单元格为字段文本值
func EncodeCSV[T any](engine *rq.Engine[T], records []T) ([]byte, error) {
	columns := engine.FieldNames()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}

	row := make([]string, len(columns))
	for _, r := range records {
		for i, col := range columns {
			v, err := engine.Field(r, col)
			if err != nil {
				return nil, err
			}
			row[i] = v.Text()
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
