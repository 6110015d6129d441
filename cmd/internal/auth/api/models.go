package authapi

import "minisocial/cmd/identity"

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    identity.User `json:"user"`
}
