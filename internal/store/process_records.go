package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"soilstat/internal/model"
)

// ErrRecordNotFound 处理记录不存在
var ErrRecordNotFound = errors.New("process record not found")

const processRecordsTable = "process_records"

var recordColumns = []string{
	"process_id", "standard_id", "sample_files", "area_files", "attribute_count",
	"sample_rows", "area_rows", "skipped", "preview", "excel_path", "created_at",
	"sample_paths", "area_paths",
}

func marshalList(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return "[]", nil
	}
	return string(data), nil
}

// SaveProcessRecord 保存处理记录，只保留最新的 maxRecords 条
func (s *Store) SaveProcessRecord(rec *model.ProcessRecord) error {
	sampleFiles, err := marshalList(rec.SampleFiles)
	if err != nil {
		return fmt.Errorf("marshal sample files: %w", err)
	}
	areaFiles, err := marshalList(rec.AreaFiles)
	if err != nil {
		return fmt.Errorf("marshal area files: %w", err)
	}
	skipped, err := marshalList(rec.Skipped)
	if err != nil {
		return fmt.Errorf("marshal skipped: %w", err)
	}
	preview, err := marshalList(rec.Preview)
	if err != nil {
		return fmt.Errorf("marshal preview: %w", err)
	}
	samplePaths, err := marshalList(rec.SamplePaths)
	if err != nil {
		return fmt.Errorf("marshal sample paths: %w", err)
	}
	areaPaths, err := marshalList(rec.AreaPaths)
	if err != nil {
		return fmt.Errorf("marshal area paths: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = sq.Insert(processRecordsTable).
		Columns(recordColumns...).
		Values(rec.ProcessID, rec.StandardID, sampleFiles, areaFiles, rec.AttributeCount,
			rec.SampleRows, rec.AreaRows, skipped, preview, rec.ExcelPath, rec.CreatedAt.UTC(),
			samplePaths, areaPaths).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert process record: %w", err)
	}

	_, err = sq.Delete(processRecordsTable).
		Where(fmt.Sprintf("id NOT IN (SELECT id FROM %s ORDER BY id DESC LIMIT ?)", processRecordsTable), s.maxRecords).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to trim process records: %w", err)
	}

	return tx.Commit()
}

// ListProcessRecords 按时间倒序列出处理记录（不含预览）
func (s *Store) ListProcessRecords(limit int) ([]*model.ProcessRecord, error) {
	q := sq.Select(recordColumns...).From(processRecordsTable).OrderBy("id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	rows, err := q.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list process records: %w", err)
	}
	defer rows.Close()

	var out []*model.ProcessRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		rec.Preview = nil
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetProcessRecord 按 process_id 获取处理记录
func (s *Store) GetProcessRecord(processID string) (*model.ProcessRecord, error) {
	row := sq.Select(recordColumns...).
		From(processRecordsTable).
		Where(sq.Eq{"process_id": processID}).
		RunWith(s.db).
		QueryRow()

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, processID)
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*model.ProcessRecord, error) {
	var (
		rec                                      model.ProcessRecord
		sampleFiles, areaFiles, skipped, preview string
		samplePaths, areaPaths                   string
		createdAt                                time.Time
	)
	if err := row.Scan(&rec.ProcessID, &rec.StandardID, &sampleFiles, &areaFiles, &rec.AttributeCount,
		&rec.SampleRows, &rec.AreaRows, &skipped, &preview, &rec.ExcelPath, &createdAt,
		&samplePaths, &areaPaths); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		raw  string
		dest any
	}{
		{sampleFiles, &rec.SampleFiles},
		{areaFiles, &rec.AreaFiles},
		{skipped, &rec.Skipped},
		{preview, &rec.Preview},
		{samplePaths, &rec.SamplePaths},
		{areaPaths, &rec.AreaPaths},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dest); err != nil {
			return nil, fmt.Errorf("decode process record %s: %w", rec.ProcessID, err)
		}
	}
	rec.CreatedAt = createdAt
	return &rec, nil
}
