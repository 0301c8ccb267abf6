package repository

import (
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	FindByUser(p policy.Principal) (*model.Profile, error)
	Upsert(p policy.Principal, profile *model.Profile) error

	// StudentsByStandard reads student profiles without row rules. It only
	// serves the send workflow, which needs to target students the sending
	// teacher could never see through their own rules.
	StudentsByStandard(standard int) ([]model.Profile, error)
}

type profileRepository struct {
	db    *gorm.DB
	rules *policy.Engine
}

func NewProfileRepository(db *gorm.DB, rules *policy.Engine) ProfileRepository {
	return &profileRepository{db: db, rules: rules}
}

func (r *profileRepository) FindByUser(p policy.Principal) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.
		Scopes(r.rules.Scope(p, "user_profiles", policy.OpSelect)).
		Where("user_profiles.user_id = ?", p.ID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Upsert(p policy.Principal, profile *model.Profile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "standard", "updated_at"}),
		}).Create(profile).Error
		if err != nil {
			return err
		}
		return r.rules.CheckRow(tx, p, "user_profiles", policy.OpInsert, profile.UserID)
	})
}

func (r *profileRepository) StudentsByStandard(standard int) ([]model.Profile, error) {
	var students []model.Profile
	err := r.db.
		Where("user_profiles.role = ? AND user_profiles.standard = ?", model.RoleStudent, standard).
		Find(&students).Error
	return students, err
}
