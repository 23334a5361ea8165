package db

import (
	"log"
	"strings"

	"github.com/affectlab/affectchat/internal/conversation"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens the database and migrates the schema. MySQL in deployment;
// a "sqlite://path" DSN runs the whole stack on a local file for dev.
func Connect(dsn string) *gorm.DB {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "sqlite://") {
		dialector = gormsqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	} else {
		dialector = mysql.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gdb.AutoMigrate(
		&conversation.Conversation{},
		&conversation.Message{},
		&conversation.TurnJob{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	return gdb
}
