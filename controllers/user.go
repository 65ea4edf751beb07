package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"chocobliss/apperr"
	"chocobliss/middleware"
	"chocobliss/models"
	"chocobliss/store"
	"chocobliss/utils"
)

var errBadCredentials = apperr.WithMessage(apperr.ErrUnauthorized, "Invalid email or password")

// UserController handles signup, login and profile requests
type UserController struct {
	Users  store.UserStore
	Tokens *utils.TokenIssuer
	Now    func() time.Time
}

// NewUserController creates a new UserController
func NewUserController(users store.UserStore, tokens *utils.TokenIssuer) *UserController {
	return &UserController{Users: users, Tokens: tokens, Now: time.Now}
}

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Signup registers a new user
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := models.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, fmt.Errorf("hash password: %w", err))
		return
	}

	user, err := uc.Users.Create(r.Context(), &models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Phone:     req.Phone,
		Address:   req.Address,
		Role:      models.RoleUser,
		CreatedAt: uc.Now().UTC(),
	})
	if errors.Is(err, apperr.ErrConflict) {
		writeError(w, r, apperr.Invalid("email", "user with this email already exists"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := uc.Tokens.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Printf("user registered id=%s", user.ID.Hex())
	writeJSON(w, http.StatusCreated, authResponse{Success: true, Message: "User registered successfully", Token: token, User: user})
}

// Login checks credentials and issues a token
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := models.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := uc.Users.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		writeError(w, r, errBadCredentials)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		writeError(w, r, errBadCredentials)
		return
	}

	now := uc.Now().UTC()
	if err := uc.Users.TouchLogin(r.Context(), user.ID, now); err != nil {
		log.Printf("record login id=%s: %v", user.ID.Hex(), err)
	}
	user.LastLogin = &now

	token, err := uc.Tokens.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "Login successful", Token: token, User: user})
}

// GetProfile returns the signed-in user
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := uc.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Success: true, User: user})
}

// UpdateProfile applies a partial profile update
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.ProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := models.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := uc.Users.UpdateProfile(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "Profile updated successfully", User: user})
}

// ChangePassword replaces the password after checking the current one
func (uc *UserController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChange
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := models.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := uc.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		writeError(w, r, apperr.WithMessage(apperr.ErrUnauthorized, "Current password is incorrect"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, fmt.Errorf("hash password: %w", err))
		return
	}
	if err := uc.Users.SetPassword(r.Context(), user.ID, string(hashedPassword)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "Password changed successfully"})
}

// Logout is acknowledged only; the client drops its token.
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "Logout successful. Please remove the token from client storage."})
}

func (uc *UserController) currentUser(r *http.Request) (*models.User, error) {
	id, err := callerID(r)
	if err != nil {
		return nil, err
	}
	return uc.Users.FindByID(r.Context(), id)
}

func callerID(r *http.Request) (primitive.ObjectID, error) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		return primitive.NilObjectID, apperr.ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, apperr.WithMessage(apperr.ErrUnauthorized, "Invalid token subject")
	}
	return id, nil
}
