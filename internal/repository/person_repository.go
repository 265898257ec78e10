package repository

import (
	"context"

	"gorm.io/gorm"

	"day-planner/internal/apperr"
	"day-planner/internal/model"
)

// PersonRepository stores the people whose birthdays are tracked.
type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// FindAll returns everyone in calendar order of their birthdays.
func (r *PersonRepository) FindAll(ctx context.Context) ([]model.Person, error) {
	var people []model.Person
	err := r.db.WithContext(ctx).
		Order("birth_month ASC, birth_day ASC, name ASC, id ASC").
		Find(&people).Error
	if err != nil {
		return nil, apperr.Store("list people", err)
	}
	return people, nil
}

func (r *PersonRepository) FindByID(ctx context.Context, id uint) (*model.Person, error) {
	var person model.Person
	if err := r.db.WithContext(ctx).First(&person, id).Error; err != nil {
		return nil, storeErr("find person", "person", id, err)
	}
	return &person, nil
}

func (r *PersonRepository) Create(ctx context.Context, person *model.Person) error {
	if err := r.db.WithContext(ctx).Create(person).Error; err != nil {
		return apperr.Store("create person", err)
	}
	return nil
}

func (r *PersonRepository) Save(ctx context.Context, person *model.Person) error {
	if err := r.db.WithContext(ctx).Save(person).Error; err != nil {
		return apperr.Store("save person", err)
	}
	return nil
}

func (r *PersonRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Person{}, id).Error; err != nil {
		return apperr.Store("delete person", err)
	}
	return nil
}
