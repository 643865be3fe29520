package service

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship_admin_v1/internal/config"
	"dropship_admin_v1/internal/model"
	rq "dropship_admin_v1/pkg/recordquery"
)

type exportItem struct {
	Name  string
	Price float64
	Live  bool
}

func TestEncodeCSV(t *testing.T) {
	engine := rq.MustEngine(rq.Schema[exportItem]{
		Fields: map[string]rq.Accessor[exportItem]{
			"name":  func(i exportItem) rq.Value { return rq.String(i.Name) },
			"price": func(i exportItem) rq.Value { return rq.Number(i.Price) },
			"live":  func(i exportItem) rq.Value { return rq.Bool(i.Live) },
		},
	})

	data, err := EncodeCSV(engine, []exportItem{
		{Name: "Mug, large", Price: 12.5, Live: true},
		{Name: "Lamp", Price: 30},
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"live", "name", "price"},
		{"true", "Mug, large", "12.5"},
		{"false", "Lamp", "30"},
	}, rows)
}

func TestExportCSV_LocalStorage(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(config.StorageConfig{BasePath: dir})
	require.NoError(t, err)

	svc, _ := newCategoryService(t)
	seedCategories(t, svc)

	resp, err := ExportCSV(context.Background(), NewExportService(storage, nil), svc, rq.State{StatusTab: "active"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	require.True(t, strings.HasPrefix(resp.URL, LocalPublicPrefix+"/"))

	key := strings.TrimPrefix(resp.URL, LocalPublicPrefix+"/")
	assert.Contains(t, key, "_"+model.ModuleCategories+"_")
	assert.True(t, strings.HasSuffix(key, ".csv"))

	raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, svc.Engine().FieldNames(), rows[0])
}
