package history

import (
	"gorm.io/gorm"
)

type Repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

func (r *Repository) Record(e Entry) error { return r.db.Create(&e).Error }

// Latest returns up to limit entries, newest first.
func (r *Repository) Latest(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 1
	}
	var entries []Entry
	err := r.db.Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *Repository) CountByOutcome(o Outcome) (int64, error) {
	var n int64
	err := r.db.Model(&Entry{}).Where("outcome = ?", o).Count(&n).Error
	return n, err
}

// Prune keeps the newest keep entries and deletes the rest.
func (r *Repository) Prune(keep int) error {
	if keep <= 0 {
		return r.db.Where("1 = 1").Delete(&Entry{}).Error
	}
	var cutoff Entry
	err := r.db.Order("id DESC").Offset(keep - 1).Limit(1).Find(&cutoff).Error
	if err != nil || cutoff.ID == 0 {
		return err
	}
	return r.db.Where("id < ?", cutoff.ID).Delete(&Entry{}).Error
}
