package main

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"gopkg.in/gorp.v2"
)

const (
	ProdHost   = "127.0.0.1"
	ProdDbUser = "ttbridge"

	LocalHost   = "127.0.0.1"
	LocalDbUser = "root"

	DbName = "ttbridge"
)

var dbmap *gorp.DbMap

func initDB() {
	host := LocalHost
	password := passwords.LOCAL_DB_PW
	user := LocalDbUser

	if env.Production {
		host = ProdHost
		password = passwords.PROD_DB_PW
		user = ProdDbUser
	}

	db, err := sql.Open("mysql", user+":"+password+"@tcp("+host+":3306)/"+DbName)
	if err != nil {
		panic("💥 DB OPEN FAILED: " + err.Error())
	}

	err = db.Ping()
	if err != nil {
		panic("💥 DB PING FAILED: " + err.Error())
	}

	InfoLog.Println("Connected to DB ", host)

	dbmap = &gorp.DbMap{Db: db, Dialect: gorp.MySQLDialect{Engine: "InnoDB", Encoding: "UTF8"}}

	dbmap.AddTableWithName(MigrationRun{}, "migration_runs")
	dbmap.AddTableWithName(EntityMigration{}, "entity_migrations")
	dbmap.AddTableWithName(UserMapping{}, "user_mappings")
	dbmap.AddTableWithName(TagAssignment{}, "tag_assignments")
	dbmap.AddTableWithName(SyncCursor{}, "sync_cursors")

	err = dbmap.CreateTablesIfNotExists()
	if err != nil {
		panic("💥 DB ADD TABLES FAILED")
	}

	go runExecs()
}

func runExecs() {
	dbmap.Exec("CREATE INDEX gh_lookup ON entity_migrations (entity, gh_id)")
	dbmap.Exec("CREATE INDEX run_lookup ON entity_migrations (run_id)")
	dbmap.Exec("CREATE INDEX status_lookup ON entity_migrations (entity, status)")
	dbmap.Exec("ALTER TABLE entity_migrations MODIFY error TEXT")
	dbmap.Exec("ALTER TABLE entity_migrations ADD COLUMN idempotency_key VARCHAR(255) DEFAULT ''")
	dbmap.Exec("CREATE UNIQUE INDEX email_unique ON user_mappings (gh_email)")
	dbmap.Exec("ALTER TABLE user_mappings ADD COLUMN role VARCHAR(64) DEFAULT 'recruiter'")
	dbmap.Exec("ALTER TABLE migration_runs ADD COLUMN dry_run TINYINT(1) DEFAULT 0")
	dbmap.Exec("ALTER TABLE migration_runs MODIFY summary TEXT")
	dbmap.Exec("ALTER TABLE tag_assignments ADD COLUMN source VARCHAR(64) DEFAULT 'pattern'")
	dbmap.Exec("CREATE UNIQUE INDEX cursor_unique ON sync_cursors (entity)")
}
