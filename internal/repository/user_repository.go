package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/utils"
)

// NewUser is the signup input.  Password is plain text; it is hashed here.
type NewUser struct {
	Email    string
	Password string
	FullName string
	Phone    string // empty stores NULL
	Role     string
}

// ProfileUpdate carries the fields of a PATCH.  Nil means unchanged; an
// empty Phone clears it.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
	Password *string
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.FullName == nil && u.Phone == nil && u.Password == nil
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,full_name,phone,role,is_active,created_at,updated_at"

// Create inserts the user and returns its id.
func (r *UserRepo) Create(ctx context.Context, in NewUser, cost int) (uint64, error) {
	email := normalizeEmail(in.Email)
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return 0, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, phone, role) VALUES (?,?,?,?,?)",
		email, hash, strings.TrimSpace(in.FullName), nullable(strings.TrimSpace(in.Phone)), role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg interface{}) (model.User, error) {
	var (
		u     model.User
		phone sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if phone.Valid {
		p := phone.String
		u.Phone = &p
	}
	return u, nil
}

// UpdateProfile applies a partial update and returns the fresh record.
// A new password is hashed with cost.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, in ProfileUpdate, cost int) (model.User, error) {
	if in.Empty() {
		return model.User{}, ErrNoFields
	}
	var (
		sets []string
		args []interface{}
	)
	if in.FullName != nil {
		sets = append(sets, "full_name=?")
		args = append(args, strings.TrimSpace(*in.FullName))
	}
	if in.Phone != nil {
		sets = append(sets, "phone=?")
		args = append(args, nullable(strings.TrimSpace(*in.Phone)))
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, cost)
		if err != nil {
			return model.User{}, err
		}
		sets = append(sets, "password_hash=?")
		args = append(args, hash)
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
