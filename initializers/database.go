package initializers

import (
	"database/sql"
	"log"
	"os"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"
)

// DB holds the Postgres connection used for the moderation audit log. It is
// nil when DB_URL is unset; moderation still works, it is just not recorded.
var DB *goqu.Database

func ConnectDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Println("WARNING: DB_URL not set. Moderation actions will not be audited.")
		return
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal(err)
	}

	err = db.Ping()
	if err != nil {
		log.Fatal(err)
	}

	DB = goqu.New("postgres", db)
}
