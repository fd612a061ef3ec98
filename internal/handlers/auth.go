package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"farmstead/internal/optimizer"
	"farmstead/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserEmailKey     = "auth:user:email"
	sessionUserNameKey      = "auth:user:name"
	sessionFarmIDKey        = "auth:farm:id"
)

var (
	sessionManager  *scs.SessionManager
	database        *gorm.DB
	optimizerClient *optimizer.Client
)

// Configure installs the shared dependencies used by the HTTP handlers.
// The optimizer client may be nil, in which case formula optimization is
// served from the canned mixes.
func Configure(sm *scs.SessionManager, db *gorm.DB, opt *optimizer.Client) {
	sessionManager = sm
	database = db
	optimizerClient = opt
}

func createUser(r *http.Request, email, name, password, farmName string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashed),
	}

	err = database.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		farm := &models.Farm{Name: strings.TrimSpace(farmName)}
		if err := tx.Create(farm).Error; err != nil {
			return err
		}
		user.FarmID = farm.ID
		user.Farm = farm
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func findUserByEmail(r *http.Request, email string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	user := &models.User{}
	err := database.WithContext(r.Context()).Where("lower(email) = ?", strings.ToLower(email)).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func establishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserEmailKey, user.Email)
	sessionManager.Put(r.Context(), sessionUserNameKey, user.Name)
	sessionManager.Put(r.Context(), sessionFarmIDKey, user.FarmID)
	return nil
}

// RequireAuthentication ensures the request carries an active session
// before the resource handler runs.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActiveSession(r) {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logout destroys the current session.
func Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "unable to end session")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// ActiveSession returns true when the current request has an authenticated session.
func ActiveSession(r *http.Request) bool {
	if sessionManager == nil {
		return false
	}
	return sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) && sessionManager.GetInt(r.Context(), sessionUserIDKey) > 0
}

func currentUserID(r *http.Request) (uint, bool) {
	if sessionManager == nil {
		return 0, false
	}
	id := sessionManager.GetInt(r.Context(), sessionUserIDKey)
	if id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// currentFarmID resolves the farm the authenticated user belongs to.
// An empty value means the user is not attached to a farm yet.
func currentFarmID(r *http.Request) (string, bool) {
	if sessionManager == nil {
		return "", false
	}
	if _, ok := currentUserID(r); !ok {
		return "", false
	}
	farmID := strings.TrimSpace(sessionManager.GetString(r.Context(), sessionFarmIDKey))
	if farmID == "" {
		return "", false
	}
	return farmID, true
}
