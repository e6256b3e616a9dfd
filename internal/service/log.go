package service

import (
	"encoding/json"
	"time"

	"cloudtouch-gate/internal/model"

	"gorm.io/gorm"
)

// LogOperation appends one row to the operation log. Callers treat it
// as best effort; a failed audit write never fails the operation.
func LogOperation(db *gorm.DB, actor, action, targetID string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := &model.OperationLog{
		Actor:     actor,
		Action:    action,
		TargetID:  targetID,
		Details:   string(detailsJSON),
		CreatedAt: time.Now(),
	}
	return db.Create(entry).Error
}

// GetOperationLogs returns one page of the log, newest first.
func GetOperationLogs(db *gorm.DB, page, pageSize int) ([]model.OperationLog, int64, error) {
	var logs []model.OperationLog
	var total int64

	if err := db.Model(&model.OperationLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := db.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
