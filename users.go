/*
Copyright 2024 Daftar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package daftar

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

// CreateUser registers an operator account. The password is stored hashed;
// no token is issued until the first login.
func (d *Daftar) CreateUser(ctx context.Context, user *model.User, password string) (*model.User, error) {
	if !user.Role.Valid() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Unknown role", user.Role)
	}
	user.PasswordHash = hashPassword(password)
	return d.datasource.CreateUser(ctx, user)
}

func (d *Daftar) GetAllUsers(ctx context.Context) ([]model.User, error) {
	return d.datasource.GetAllUsers(ctx)
}

// Login verifies the credentials and issues a fresh bearer token, replacing
// any previous one.
func (d *Daftar) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := d.datasource.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "Invalid username or password", nil)
	}
	if subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(hashPassword(password))) != 1 {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "Invalid username or password", nil)
	}

	token, err := model.GenerateToken()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to issue token", err)
	}
	if err := d.datasource.UpdateUserToken(ctx, user.ID, token); err != nil {
		return nil, err
	}
	user.Token = token
	return user, nil
}

// ResolveToken maps a bearer token back to its user.
func (d *Daftar) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "Missing authorization token", nil)
	}
	user, err := d.datasource.GetUserByToken(ctx, token)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "Invalid authorization token", nil)
	}
	return user, nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
