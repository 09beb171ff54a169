package repository

import (
	"context"
	"fmt"
	"time"
)

// LogFile 已上传日志文件的登记项，原始内容存在数据目录里
type LogFile struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	SizeMb     float64   `json:"size_mb" db:"size_mb"`
	RowCount   int64     `json:"row_count" db:"row_count"`
	Path       string    `json:"-" db:"path"`
	Processed  bool      `json:"processed" db:"processed"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// FileRepository 文件登记仓库
type FileRepository struct {
	db *DB
}

// NewFileRepository 创建文件仓库
func NewFileRepository(db *DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create 登记文件
func (r *FileRepository) Create(ctx context.Context, f *LogFile) error {
	query := `
		INSERT INTO log_files (name, size_mb, row_count, path, processed)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id, uploaded_at
	`
	err := r.db.Pool.QueryRow(ctx, query, f.Name, f.SizeMb, f.RowCount, f.Path).
		Scan(&f.ID, &f.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert log file: %w", err)
	}
	return nil
}

// List 全部文件，按上传时间排序
func (r *FileRepository) List(ctx context.Context) ([]*LogFile, error) {
	query := `
		SELECT id, name, size_mb, row_count, path, processed, uploaded_at
		FROM log_files ORDER BY uploaded_at
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list log files: %w", err)
	}
	defer rows.Close()

	var files []*LogFile
	for rows.Next() {
		f := &LogFile{}
		if err := rows.Scan(&f.ID, &f.Name, &f.SizeMb, &f.RowCount, &f.Path, &f.Processed, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan log file: %w", err)
		}
		files = append(files, f)
	}
	return files, nil
}

// ListUnprocessed 尚未进入分析结果的文件
func (r *FileRepository) ListUnprocessed(ctx context.Context) ([]*LogFile, error) {
	query := `
		SELECT id, name, size_mb, row_count, path, processed, uploaded_at
		FROM log_files WHERE NOT processed ORDER BY uploaded_at
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed log files: %w", err)
	}
	defer rows.Close()

	var files []*LogFile
	for rows.Next() {
		f := &LogFile{}
		if err := rows.Scan(&f.ID, &f.Name, &f.SizeMb, &f.RowCount, &f.Path, &f.Processed, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan log file: %w", err)
		}
		files = append(files, f)
	}
	return files, nil
}

// ExistsByName 同名文件是否已登记（去重依据）
func (r *FileRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM log_files WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check log file exists: %w", err)
	}
	return exists, nil
}

// MarkProcessed 标记文件已处理并记录行数
func (r *FileRepository) MarkProcessed(ctx context.Context, id int64, rowCount int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE log_files SET processed = true, row_count = $2 WHERE id = $1`, id, rowCount)
	if err != nil {
		return fmt.Errorf("mark log file processed: %w", err)
	}
	return nil
}

// MarkAllUnprocessed 重置后所有文件回到待处理状态
func (r *FileRepository) MarkAllUnprocessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE log_files SET processed = false`)
	if err != nil {
		return fmt.Errorf("mark log files unprocessed: %w", err)
	}
	return nil
}

// Delete 删除登记项，返回文件路径以便清理磁盘内容
func (r *FileRepository) Delete(ctx context.Context, id int64) (string, error) {
	var path string
	err := r.db.Pool.QueryRow(ctx, `DELETE FROM log_files WHERE id = $1 RETURNING path`, id).Scan(&path)
	if err != nil {
		return "", fmt.Errorf("delete log file: %w", err)
	}
	return path, nil
}

// DeleteAll 清空登记表，返回所有文件路径
func (r *FileRepository) DeleteAll(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `DELETE FROM log_files RETURNING path`)
	if err != nil {
		return nil, fmt.Errorf("delete all log files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
