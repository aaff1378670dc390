package service

import (
	"net/http"
	"strings"

	"github.com/inkwell-dev/inkwell/internal/domain"
	"github.com/inkwell-dev/inkwell/internal/errors"
	"github.com/inkwell-dev/inkwell/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

// to mock service in tests
type AuthService interface {
	Register(email domain.Email, username string, password domain.Password) (domain.User, error)
	Login(email domain.Email, password domain.Password) (string, domain.User, error)
	User(id domain.UserId) (domain.User, error)
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	UserByEmail(email domain.Email) (domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

type Auth struct {
	storage AuthStorage
	jwt     Jwt
}

func NewAuth(storage AuthStorage, jwt Jwt) *Auth {
	return &Auth{storage, jwt}
}

func (a *Auth) Register(email domain.Email, username string, password domain.Password) (domain.User, error) {
	email = strings.ToLower(email)
	if username == "" {
		// Default the display name to the mailbox part, as the admin UI
		// shows usernames in request listings.
		username = strings.SplitN(email, "@", 2)[0]
	}

	if _, err := a.storage.UserByEmail(email); err == nil {
		return domain.User{}, &errors.ErrorWithStatusCode{Message: "User with this email already exists", StatusCode: http.StatusBadRequest}
	} else if !errors.IsNotFound(err) {
		return domain.User{}, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}

	id, err := a.storage.SaveUser(domain.User{Email: email, Username: username, PassHash: string(passHash)})
	if err != nil {
		return domain.User{}, err
	}

	return a.storage.UserById(id)
}

func (a *Auth) Login(email domain.Email, password domain.Password) (string, domain.User, error) {
	user, err := a.storage.UserByEmail(strings.ToLower(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return "", domain.User{}, &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
		}
		return "", domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return "", domain.User{}, &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		return "", domain.User{}, err
	}

	return token, user, nil
}

func (a *Auth) User(id domain.UserId) (domain.User, error) {
	return a.storage.UserById(id)
}
