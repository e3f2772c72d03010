package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursehub/e-learning-backend/models"
)

var DB *gorm.DB

func InitDB() {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		dbHost, dbUser, dbPass, dbName, dbPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("cannot connect to database: ", err)
	}

	DB = db

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("cannot get sql.DB from gorm: ", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(DB); err != nil {
		log.Fatal("automigrate failed: ", err)
	}
	log.Println("postgres connected & migrated")
}

// Migrate runs the schema migration for every model. Shared with the test
// setup, which runs it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Course{},
		&models.Lesson{},
		&models.Review{},
		&models.Enrollment{},
		&models.Wishlist{},
		&models.PromoCode{},
		&models.Transaction{},
		&models.Note{},
	)
}

// TaxPercentage reads the checkout tax rate from the environment,
// defaulting to 0 when unset or unparsable.
func TaxPercentage() float64 {
	v := os.Getenv("TAX_PERCENTAGE")
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
