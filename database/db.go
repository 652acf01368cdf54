package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/polica/daftar/config"
)

var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	if _, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS daftar`); err != nil {
		return nil, err
	}
	err = createStudentTable(db)
	if err != nil {
		return nil, err
	}
	err = createStudyGroupTables(db)
	if err != nil {
		return nil, err
	}
	err = createPaymentTables(db)
	if err != nil {
		return nil, err
	}
	err = createBonusAndAdjustmentTables(db)
	if err != nil {
		return nil, err
	}
	err = createStudyChargeTable(db)
	if err != nil {
		return nil, err
	}
	err = createUserTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func createStudentTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daftar.students (
			id BIGSERIAL PRIMARY KEY,
			full_name TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			parent_phone_number TEXT,
			birthday_date DATE,
			gender TEXT,
			comment TEXT,
			balance NUMERIC(15,2) NOT NULL DEFAULT 0,
			department TEXT NOT NULL DEFAULT 'SCHOOL',
			account_number BIGINT UNIQUE,
			mark_for_delete BOOLEAN NOT NULL DEFAULT FALSE,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createStudyGroupTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daftar.study_groups (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			price NUMERIC(15,2) NOT NULL DEFAULT 0,
			teacher_id BIGINT,
			department TEXT NOT NULL DEFAULT 'SCHOOL',
			mark_for_delete BOOLEAN NOT NULL DEFAULT FALSE,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS daftar.enrollments (
			id BIGSERIAL PRIMARY KEY,
			group_id BIGINT NOT NULL REFERENCES daftar.study_groups(id),
			student_id BIGINT NOT NULL REFERENCES daftar.students(id),
			joined_date DATE NOT NULL,
			UNIQUE (group_id, student_id)
		)
	`)
	return err
}

func createPaymentTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daftar.payments (
			id BIGSERIAL PRIMARY KEY,
			reference TEXT NOT NULL UNIQUE,
			student_id BIGINT NOT NULL REFERENCES daftar.students(id),
			payment_type TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			amount NUMERIC(15,2) NOT NULL,
			student_balance_after NUMERIC(15,2) NOT NULL DEFAULT 0,
			payment_date TIMESTAMP NOT NULL,
			comment TEXT,
			mark_for_delete BOOLEAN NOT NULL DEFAULT FALSE,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS daftar.cash_drawers (
			id BIGSERIAL PRIMARY KEY,
			payment_method TEXT NOT NULL UNIQUE,
			amount NUMERIC(15,2) NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_payments_student ON daftar.payments (student_id)
	`)
	return err
}

func createBonusAndAdjustmentTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daftar.student_bonuses (
			id BIGSERIAL PRIMARY KEY,
			student_id BIGINT NOT NULL REFERENCES daftar.students(id),
			amount NUMERIC(15,2) NOT NULL DEFAULT 0,
			comment TEXT,
			mark_for_delete BOOLEAN NOT NULL DEFAULT FALSE,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS daftar.balance_adjustments (
			id BIGSERIAL PRIMARY KEY,
			student_id BIGINT NOT NULL REFERENCES daftar.students(id),
			old_balance NUMERIC(15,2) NOT NULL DEFAULT 0,
			new_balance NUMERIC(15,2) NOT NULL,
			comment TEXT,
			mark_for_delete BOOLEAN NOT NULL DEFAULT FALSE,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createStudyChargeTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daftar.study_charges (
			id BIGSERIAL PRIMARY KEY,
			student_id BIGINT NOT NULL REFERENCES daftar.students(id),
			group_id BIGINT NOT NULL REFERENCES daftar.study_groups(id),
			amount NUMERIC(15,2) NOT NULL,
			charge_date DATE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (student_id, group_id, charge_date)
		)
	`)
	return err
}

func createUserTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS daftar.users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL,
			phone_number TEXT,
			role TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			token TEXT UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}
