package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"recruiting-service/internal/model"

	"gorm.io/gorm"
)

// Store is the narrow persistence surface the scheduling engine needs.
// Get-style methods return (nil, nil) when the row does not exist or belongs
// to another tenant, so callers decide how absence maps to errors.
type Store interface {
	// InTx runs fn against a store bound to a serializable transaction.
	// The engine relies on this isolation level to prevent two concurrent
	// requests from double-booking an interviewer or double-scheduling a
	// candidate.
	InTx(ctx context.Context, fn func(Store) error) error

	GetCandidate(ctx context.Context, tenantID, id uint) (*model.Candidate, error)
	CountUsers(ctx context.Context, tenantID uint, ids []uint) (int64, error)

	GetInterview(ctx context.Context, tenantID, id uint) (*model.Interview, error)
	FindActiveInterview(ctx context.Context, tenantID, candidateID uint, after time.Time) (*model.Interview, error)
	FindStartingBefore(ctx context.Context, tenantID uint, before time.Time, excludeID uint) ([]model.Interview, error)
	CreateInterview(ctx context.Context, iv *model.Interview) error
	UpdateInterview(ctx context.Context, iv *model.Interview) error

	CreateBusyBlocks(ctx context.Context, blocks []model.BusyBlock) error
	DeleteBusyBlocks(ctx context.Context, tenantID uint, source string, sourceID uint) error
	BusyBlocks(ctx context.Context, tenantID uint, source string, sourceID uint) ([]model.BusyBlock, error)

	UpdateCandidateStage(ctx context.Context, tenantID, candidateID uint, stage string) error
	CreateStageHistory(ctx context.Context, h *model.CandidateStageHistory) error
	AppendCandidateNote(ctx context.Context, tenantID, candidateID uint, note string) error
}

// txTimeout bounds serializable transactions. On expiry the operation fails
// and the caller retries from scratch; no partial state is retained.
const txTimeout = 10 * time.Second

// GormStore is the gorm-backed Store implementation.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InTx(ctx context.Context, fn func(Store) error) error {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func (s *GormStore) GetCandidate(ctx context.Context, tenantID, id uint) (*model.Candidate, error) {
	var c model.Candidate
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) CountUsers(ctx context.Context, tenantID uint, ids []uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Count(&count).Error
	return count, err
}

func (s *GormStore) GetInterview(ctx context.Context, tenantID, id uint) (*model.Interview, error) {
	var iv model.Interview
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (s *GormStore) FindActiveInterview(ctx context.Context, tenantID, candidateID uint, after time.Time) (*model.Interview, error) {
	var iv model.Interview
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND candidate_id = ? AND status = ? AND date > ?",
			tenantID, candidateID, model.StatusScheduled, after).
		First(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

// FindStartingBefore is the coarse storage-side filter for conflict detection:
// non-cancelled interviews starting before the probe window's end. The exact
// overlap and participant-intersection tests run in memory on the result.
func (s *GormStore) FindStartingBefore(ctx context.Context, tenantID uint, before time.Time, excludeID uint) ([]model.Interview, error) {
	var interviews []model.Interview
	q := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status <> ? AND date < ?", tenantID, model.StatusCancelled, before)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&interviews).Error; err != nil {
		return nil, err
	}
	return interviews, nil
}

func (s *GormStore) CreateInterview(ctx context.Context, iv *model.Interview) error {
	return s.db.WithContext(ctx).Create(iv).Error
}

func (s *GormStore) UpdateInterview(ctx context.Context, iv *model.Interview) error {
	return s.db.WithContext(ctx).Save(iv).Error
}

func (s *GormStore) CreateBusyBlocks(ctx context.Context, blocks []model.BusyBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&blocks).Error
}

func (s *GormStore) DeleteBusyBlocks(ctx context.Context, tenantID uint, source string, sourceID uint) error {
	return s.db.WithContext(ctx).
		Where("tenant_id = ? AND source = ? AND source_id = ?", tenantID, source, sourceID).
		Delete(&model.BusyBlock{}).Error
}

func (s *GormStore) BusyBlocks(ctx context.Context, tenantID uint, source string, sourceID uint) ([]model.BusyBlock, error) {
	var blocks []model.BusyBlock
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND source = ? AND source_id = ?", tenantID, source, sourceID).
		Find(&blocks).Error
	return blocks, err
}

func (s *GormStore) UpdateCandidateStage(ctx context.Context, tenantID, candidateID uint, stage string) error {
	return s.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("tenant_id = ? AND id = ?", tenantID, candidateID).
		Update("stage", stage).Error
}

func (s *GormStore) CreateStageHistory(ctx context.Context, h *model.CandidateStageHistory) error {
	return s.db.WithContext(ctx).Create(h).Error
}

func (s *GormStore) AppendCandidateNote(ctx context.Context, tenantID, candidateID uint, note string) error {
	return s.db.WithContext(ctx).Model(&model.Candidate{}).
		Where("tenant_id = ? AND id = ?", tenantID, candidateID).
		Update("notes", gorm.Expr("CASE WHEN notes = '' OR notes IS NULL THEN ? ELSE notes || E'\\n' || ? END", note, note)).Error
}
