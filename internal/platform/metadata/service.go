package metadata

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key within a transaction.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an efficient and atomic "upsert" operation.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- Specific Helpers ---

// GetLastResetMonth 返回最近一次完成月度重置的月份标签（"YYYY-MM"）。
// 从未重置过时返回空字符串。
func GetLastResetMonth(db *gorm.DB) (string, error) {
	return GetValue(db, LastResetMonthKey)
}

// SetLastResetMonth 记录最近一次完成月度重置的月份标签。
func SetLastResetMonth(db *gorm.DB, label string) error {
	return SetValue(db, LastResetMonthKey, label)
}

// SetLastSnapshotAt 记录最近一次成功快照的时间。
func SetLastSnapshotAt(db *gorm.DB, t time.Time) error {
	return SetValue(db, LastSnapshotAtKey, t.Format(time.RFC3339))
}

// GetLastSnapshotAt 返回最近一次成功快照的时间，从未快照过时返回零值。
func GetLastSnapshotAt(db *gorm.DB) (time.Time, error) {
	valueStr, err := GetValue(db, LastSnapshotAtKey)
	if err != nil {
		return time.Time{}, err
	}
	if valueStr == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastSnapshotAtKey, err)
	}
	return t, nil
}
