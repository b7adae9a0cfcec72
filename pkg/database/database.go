package database

import (
	"fmt"
	"log"

	"learnlink_backend/internal/config"
	"learnlink_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Resource{},
		&model.Like{},
		&model.ReadingHistory{},
		&model.Notification{},
		&model.Lesson{},
		&model.Discussion{},
		&model.DiscussionPost{},
		&model.UserActivityLog{},
		&model.Recommendation{},
	)

	if err != nil {
		return nil, err
	}

	if err := seedAdminUser(db); err != nil {
		return nil, err
	}

	return db, nil
}

// seedAdminUser creates the initial SuperAdmin account on an empty database.
func seedAdminUser(db *gorm.DB) error {
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.SuperAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:            "Admin User",
		Email:           "admin@learnlink.edu",
		Password:        string(hash),
		Role:            model.SuperAdmin,
		Status:          model.UserActive,
		Initials:        "AU",
		AvatarColor:     "background: linear-gradient(135deg, #6366f1, #4f46e5)",
		GradeOrPosition: "System Administrator",
	}
	return db.Create(admin).Error
}
