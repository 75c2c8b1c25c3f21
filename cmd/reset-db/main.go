package main

import (
	"flag"

	"strength-tracker/internal/config"
	"strength-tracker/internal/models"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// One-off utility: drops the snapshot log and user table so the tracker
// starts from a clean slate on the next server boot.
func main() {
	confirm := flag.Bool("yes", false, "actually drop the tables")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found")
	}
	cfg := config.Load()

	if !*confirm {
		logrus.Fatal("refusing to drop tables without -yes")
	}

	db, err := gorm.Open(mysql.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := db.Migrator().DropTable(&models.MarketSnapshot{}, &models.User{}); err != nil {
		logrus.WithError(err).Fatal("failed to drop tables")
	}
	logrus.Info("market_history and users dropped; database is clean")
}
