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

package client

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Session holds the bearer token recovered from a persisted auth blob. The
// blob is parsed exactly once, at construction; callers read Token() instead
// of re-parsing per request.
type Session struct {
	token string
}

// The persisted blob nests the auth state as a JSON string inside the outer
// document: {"admin": {"auth": "{\"session\": {\"token\": \"...\"}}"}}.
type persistedState struct {
	Admin struct {
		Auth string `json:"auth"`
	} `json:"admin"`
}

type authState struct {
	Session struct {
		Token string `json:"token"`
	} `json:"session"`
}

// ParseSession recovers the session token from a persisted auth blob. A
// malformed or empty blob degrades to an anonymous session with an empty
// token; the server rejects such requests with 401.
func ParseSession(blob []byte) *Session {
	if len(blob) == 0 {
		return &Session{}
	}

	var state persistedState
	if err := json.Unmarshal(blob, &state); err != nil {
		logrus.WithError(err).Warn("failed to parse persisted auth state, proceeding unauthenticated")
		return &Session{}
	}

	var auth authState
	if err := json.Unmarshal([]byte(state.Admin.Auth), &auth); err != nil {
		logrus.WithError(err).Warn("failed to parse auth session, proceeding unauthenticated")
		return &Session{}
	}

	return &Session{token: auth.Session.Token}
}

// NewSession wraps an already-known token.
func NewSession(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Token() string {
	return s.token
}

// Authenticated reports whether a token was recovered.
func (s *Session) Authenticated() bool {
	return s.token != ""
}
