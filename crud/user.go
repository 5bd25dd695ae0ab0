package crud

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blogApi/domain"
	"blogApi/errs"
)

// UserService manages Users. It's the credential half of the auth system:
// it registers users with bcrypt hashed passwords and checks submitted
// credentials. Issuing bearer tokens is up to AccessTokenService.
// It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	pepper     string
	emailRegex *regexp.Regexp
	// dummyHash is compared against when the email is unknown, so that
	// a failed login takes the same time whether or not the user exists.
	dummyHash []byte
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB, pepper string) *UserService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"+pepper), bcrypt.DefaultCost)
	return &UserService{
		userValidator{
			pepper:     pepper,
			emailRegex: regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			dummyHash:  dummy,
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate checks a submitted email address and password. Whether the
// email is unknown or the password is wrong, it returns the very same error.
func (uv *userValidator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		var msgs []string
		if email == "" {
			msgs = append(msgs, "The email field is required.")
		}
		if password == "" {
			msgs = append(msgs, "The password field is required.")
		}
		return nil, errs.Invalid(msgs)
	}

	found, err := uv.userGorm.ByEmail(ctx, email)
	if err != nil {
		if errs.ErrorCode(err) != errs.ENOTFOUND {
			return nil, err
		}
		// Burn the same amount of time a real comparison would.
		bcrypt.CompareHashAndPassword(uv.dummyHash, []byte(password+uv.pepper))
		return nil, errs.InvalidCredential
	}

	// Append the pepper to the submitted password and compare it to the
	// password hash stored in the user's database record.
	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password+uv.pepper))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errs.InvalidCredential
		}
		return nil, err
	}
	return found, nil
}

// Create runs validations needed for creating new User database records.
func (uv *userValidator) Create(ctx context.Context, user *domain.User) error {
	err := runUserValFns(user,
		uv.nameNormalize,
		uv.nameRequired,
		uv.nameMaxLength,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.passwordRequired,
		uv.passwordMinLength)
	if err != nil {
		return err
	}
	if err := uv.emailIsAvail(ctx, user); err != nil {
		return err
	}
	if err := uv.passwordBcrypt(user); err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, user)
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// Failed validations are collected and returned as one error. Any other error is returned right away.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	var msgs []string
	for _, fn := range fns {
		if err := fn(user); err != nil {
			if errs.ErrorCode(err) != errs.EINVALID {
				return err
			}
			msgs = append(msgs, errs.ErrorMessage(err))
		}
	}
	return errs.Invalid(msgs)
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

// nameNormalize trims the name's whitespaces.
func (uv *userValidator) nameNormalize(user *domain.User) error {
	user.Name = strings.TrimSpace(user.Name)
	return nil
}

// nameRequired makes sure that the name is not the empty string.
func (uv *userValidator) nameRequired(user *domain.User) error {
	if user.Name == "" {
		return errs.Errorf(errs.EINVALID, "The name field is required.")
	}
	return nil
}

// nameMaxLength makes sure that the name does not exceed 255 characters.
func (uv *userValidator) nameMaxLength(user *domain.User) error {
	if utf8.RuneCountInString(user.Name) > 255 {
		return errs.Errorf(errs.EINVALID, "The name must not be greater than 255 characters.")
	}
	return nil
}

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(user *domain.User) error {
	if user.Email == "" {
		return nil
	}
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "The email must be a valid email address.")
	}
	return nil
}

// emailIsAvail makes sure that a provided email address is not yet taken.
// The unique index on the email column backs this up for concurrent registrations.
func (uv *userValidator) emailIsAvail(ctx context.Context, user *domain.User) error {
	_, err := uv.userGorm.ByEmail(ctx, user.Email)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		// Address is not taken.
		return nil
	}
	if err != nil {
		return err
	}
	return errs.Errorf(errs.ECONFLICT, "The email has already been taken.")
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Email = strings.TrimSpace(user.Email)
	return nil
}

// emailRequired makes sure that the email is not the empty string.
func (uv *userValidator) emailRequired(user *domain.User) error {
	if user.Email == "" {
		return errs.Errorf(errs.EINVALID, "The email field is required.")
	}
	return nil
}

// passwordBcrypt hashes a user's password with a predefined pepper.
// It then clears the password on the user object in memory.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	pwBytes := []byte(user.Password + uv.pepper)
	hashedBytes, err := bcrypt.GenerateFromPassword(pwBytes, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// passwordMinLength makes sure that the user's password is at least 8 characters long.
func (uv *userValidator) passwordMinLength(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	if utf8.RuneCountInString(user.Password) < 8 {
		return errs.Errorf(errs.EINVALID, "The password must be at least 8 characters.")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "The password field is required.")
	}
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := first(ug.db.WithContext(ctx).Where("id = ?", id), &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ByEmail retrieves a User database record by Email.
func (ug *userGorm) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := first(ug.db.WithContext(ctx).Where("email = ?", email), &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	err := ug.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Errorf(errs.ECONFLICT, "The email has already been taken.")
	}
	return err
}

// first is a helper for getting the first database record that matches a given query.
// A missing record is turned into an ENOTFOUND error.
func first(db *gorm.DB, dst interface{}) error {
	err := db.First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}
	return err
}
