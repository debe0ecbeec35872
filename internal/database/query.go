package database

import (
	"database/sql"
	"time"
)

const recordColumns = `
	SELECT id, timestamp, action, path, file_name, size,
	       passes, blocks, block_len, safe_mode, removed,
	       duration_ms, error_message
	FROM shreds
`

// GetRecentShreds returns the N most recent shred events
func (d *ShredDB) GetRecentShreds(limit int) ([]ShredRecord, error) {
	query := recordColumns + `
	ORDER BY timestamp DESC
	LIMIT ?
	`

	return d.queryShreds(query, limit)
}

// GetShredsByAction returns events filtered by action type
func (d *ShredDB) GetShredsByAction(action string) ([]ShredRecord, error) {
	query := recordColumns + `
	WHERE action = ?
	ORDER BY timestamp DESC
	`

	return d.queryShreds(query, action)
}

// GetShredsByPath returns events matching a path pattern (SQL LIKE)
func (d *ShredDB) GetShredsByPath(pathPattern string) ([]ShredRecord, error) {
	query := recordColumns + `
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`

	return d.queryShreds(query, pathPattern)
}

// GetLargestShreds returns the N largest shredded files by size
func (d *ShredDB) GetLargestShreds(limit int) ([]ShredRecord, error) {
	query := recordColumns + `
	WHERE action = 'SHRED'
	ORDER BY size DESC
	LIMIT ?
	`

	return d.queryShreds(query, limit)
}

// ShredStats aggregates a period of shred history
type ShredStats struct {
	StartDate         time.Time
	EndDate           time.Time
	TotalShredded     int64
	TotalSkipped      int64
	TotalErrors       int64
	TotalBytesCovered int64 // Sum of file sizes successfully shredded
	ByAction          map[string]int
}

// GetShredStats returns aggregate statistics for the last N days
func (d *ShredDB) GetShredStats(days int) (*ShredStats, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	stats := &ShredStats{
		StartDate: start,
		EndDate:   end,
		ByAction:  make(map[string]int),
	}

	rows, err := d.db.Query(`
	SELECT action, COUNT(*), COALESCE(SUM(size), 0)
	FROM shreds
	WHERE timestamp BETWEEN ? AND ?
	GROUP BY action
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var count int
		var size int64
		if err := rows.Scan(&action, &count, &size); err != nil {
			return nil, err
		}
		stats.ByAction[action] = count
		switch action {
		case ActionShred:
			stats.TotalShredded = int64(count)
			stats.TotalBytesCovered = size
		case ActionSkip:
			stats.TotalSkipped = int64(count)
		case ActionError:
			stats.TotalErrors = int64(count)
		}
	}

	return stats, rows.Err()
}

// DeleteOldRecords removes history older than the given number of days
func (d *ShredDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	res, err := d.db.Exec(`DELETE FROM shreds WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// queryShreds runs a record query and scans the results
func (d *ShredDB) queryShreds(query string, args ...interface{}) ([]ShredRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ShredRecord
	for rows.Next() {
		var rec ShredRecord
		var fileName, errMsg sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.Timestamp,
			&rec.Action,
			&rec.Path,
			&fileName,
			&rec.Size,
			&rec.Passes,
			&rec.Blocks,
			&rec.BlockLen,
			&rec.SafeMode,
			&rec.Removed,
			&rec.DurationMs,
			&errMsg,
		); err != nil {
			return nil, err
		}
		rec.FileName = fileName.String
		rec.ErrorMessage = errMsg.String
		records = append(records, rec)
	}

	return records, rows.Err()
}
