package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pos_engine/internal/models"
)

type Config struct {
	DB_HOST          string
	DB_PORT          string
	DB_USER          string
	DB_PASSWORD      string
	DB_NAME          string
	REDIS_ADDR       string
	KAFKA_ADDRESS    string
	ACTIVITY_TOPIC   string
	ES_URL           string
	ES_USER          string
	ES_PASSWORD      string
	JWT_SECRET       string
	MANAGER_PIN_HASH string
	CATALOG_PATH     string
	SESSION_FLUSH_MS int
	LOG_LEVEL        string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	flushMS, _ := strconv.Atoi(os.Getenv("SESSION_FLUSH_MS"))

	config := &Config{
		DB_HOST:          os.Getenv("DB_HOST"),
		DB_PORT:          os.Getenv("DB_PORT"),
		DB_USER:          os.Getenv("DB_USER"),
		DB_PASSWORD:      os.Getenv("DB_PASSWORD"),
		DB_NAME:          os.Getenv("DB_NAME"),
		REDIS_ADDR:       os.Getenv("REDIS_ADDR"),
		KAFKA_ADDRESS:    os.Getenv("KAFKA_ADDRESS"),
		ACTIVITY_TOPIC:   os.Getenv("ACTIVITY_TOPIC"),
		ES_URL:           os.Getenv("ES_URL"),
		ES_USER:          os.Getenv("ES_USER"),
		ES_PASSWORD:      os.Getenv("ES_PASSWORD"),
		JWT_SECRET:       os.Getenv("JWT_SECRET"),
		MANAGER_PIN_HASH: os.Getenv("MANAGER_PIN_HASH"),
		CATALOG_PATH:     os.Getenv("CATALOG_PATH"),
		SESSION_FLUSH_MS: flushMS,
		LOG_LEVEL:        os.Getenv("LOG_LEVEL"),
	}

	if config.ACTIVITY_TOPIC == "" {
		config.ACTIVITY_TOPIC = "order_activity"
	}

	return config, nil
}

func InitDB() (*gorm.DB, error) {
	configuration, _ := LoadConfig()

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER, configuration.DB_PASSWORD,
		configuration.DB_HOST, configuration.DB_PORT, configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.AutoMigrate(
		&models.OrderSession{},
		&models.Tab{},
		&models.Table{},
		&models.StockItem{},
		&models.Transaction{},
		&models.Settings{},
	); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}
