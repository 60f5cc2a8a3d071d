package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/cache"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

// UserPostgreSQL is the profile store with a read-through cache keyed by id and email
type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.cacheManager.InvalidateUser(ctx, user.ID, user.Email)
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := u.getDB(tx)

	if tx != nil || inTransaction(u.db) {
		return u.findOne(ctx, db, "id = ?", id)
	}

	var user models.User
	err := u.cacheManager.User.CacheOrExecute(ctx, "id:"+id, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		return u.findOne(ctx, db, "id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := u.getDB(tx)
	if tx != nil || inTransaction(u.db) {
		return u.findOne(ctx, db, "email = ?", email)
	}

	var user models.User
	err := u.cacheManager.User.CacheOrExecute(ctx, "email:"+email, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		return u.findOne(ctx, db, "email = ?", email)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) findOne(ctx context.Context, db *gorm.DB, where string, arg string) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).Where(where, arg).First(&user).Error; err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := u.getDB(tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	if filters.Query != "" {
		like := "%" + strings.ToLower(filters.Query) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.CollegeID != nil {
		query = query.Where("college_id = ?", *filters.CollegeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query = u.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func (u *UserPostgreSQL) UpdateProfile(ctx context.Context, tx *gorm.DB, id string, name string, phone *string) error {
	return u.update(ctx, tx, id, map[string]interface{}{
		"name":  name,
		"phone": phone,
	})
}

func (u *UserPostgreSQL) SetVerified(ctx context.Context, tx *gorm.DB, id string, verified bool) error {
	return u.update(ctx, tx, id, map[string]interface{}{"verified": verified})
}

func (u *UserPostgreSQL) update(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	db := u.getDB(tx)

	existing, err := u.findOne(ctx, db, "id = ?", id)
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	u.cacheManager.InvalidateUser(ctx, id, existing.Email)
	return nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := u.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user email: %w", err)
	}
	return count > 0, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}
