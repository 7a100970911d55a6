package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"gestion-academica/backend/internal/model"
)

// UserListFilters filtros del listado de usuarios
type UserListFilters struct {
	Role     string
	CareerID string
	Keyword  string
}

// UserRepository acceso a usuarios
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	BatchCreate(ctx context.Context, users []model.User, chunk int) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByDNI(ctx context.Context, dni string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListExistingDNIs(ctx context.Context, dnis []string) (map[string]string, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	ListWithFilters(ctx context.Context, f *UserListFilters, offset, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo crea un UserRepository
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) BatchCreate(ctx context.Context, users []model.User, chunk int) error {
	if len(users) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&users, chunk).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Career").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByDNI(ctx context.Context, dni string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Career").
		Where("dni = ?", dni).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Career").
		Where("lower(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListExistingDNIs devuelve dni -> user_id de los que ya existen
func (r *userRepo) ListExistingDNIs(ctx context.Context, dnis []string) (map[string]string, error) {
	result := make(map[string]string, len(dnis))
	if len(dnis) == 0 {
		return result, nil
	}
	var rows []model.User
	err := r.db.WithContext(ctx).
		Select("user_id", "dni").
		Where("dni IN ?", dnis).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, u := range rows {
		result[u.DNI] = u.UserID
	}
	return result, nil
}

func (r *userRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("last_name ASC, name ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListWithFilters(ctx context.Context, f *UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if f != nil {
		if f.Role != "" {
			db = db.Where("role = ?", f.Role)
		}
		if f.CareerID != "" {
			db = db.Where("career_id = ?", f.CareerID)
		}
		if f.Keyword != "" {
			like := "%" + strings.ToLower(f.Keyword) + "%"
			db = db.Where("lower(name) LIKE ? OR lower(last_name) LIKE ? OR dni LIKE ? OR lower(email) LIKE ?",
				like, like, like, like)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Career").
		Offset(offset).Limit(limit).
		Order("last_name ASC, name ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Career").Save(user).Error
}

func (r *userRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
