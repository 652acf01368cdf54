package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

func (d Datasource) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	u.CreatedAt = time.Now()

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO daftar.users (username, full_name, phone_number, role, password_hash, token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, u.Username, u.FullName, nullString(u.PhoneNumber), u.Role, u.PasswordHash, nullString(u.Token), u.CreatedAt).Scan(&u.ID)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "User with this username already exists", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create user", err)
	}

	return u, nil
}

func (d Datasource) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return d.getUser(ctx, `username = $1`, username)
}

func (d Datasource) GetUserByToken(ctx context.Context, token string) (*model.User, error) {
	return d.getUser(ctx, `token = $1`, token)
}

func (d Datasource) getUser(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	u := model.User{}
	var phone, token sql.NullString

	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, username, full_name, phone_number, role, password_hash, token, created_at
		FROM daftar.users
		WHERE `+where, arg).Scan(&u.ID, &u.Username, &u.FullName, &phone, &u.Role, &u.PasswordHash, &token, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "User not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve user", err)
	}
	u.PhoneNumber = phone.String
	u.Token = token.String

	return &u, nil
}

func (d Datasource) GetAllUsers(ctx context.Context) ([]model.User, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, username, full_name, phone_number, role, password_hash, token, created_at
		FROM daftar.users
		ORDER BY id
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve users", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u := model.User{}
		var phone, token sql.NullString
		err = rows.Scan(&u.ID, &u.Username, &u.FullName, &phone, &u.Role, &u.PasswordHash, &token, &u.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan user data", err)
		}
		u.PhoneNumber = phone.String
		u.Token = token.String
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over users", err)
	}

	return users, nil
}

func (d Datasource) UpdateUserToken(ctx context.Context, id int64, token string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.users SET token = $2 WHERE id = $1
	`, id, token)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update user token", err)
	}
	return requireAffected(result, "User not found")
}
