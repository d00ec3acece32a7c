package models

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mmdatafocus/zone_expense_backend/utils"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type User struct {
	ID           string     `gorm:"type:char(36);primary_key" json:"id"`
	Email        string     `gorm:"size:191;not null;uniqueIndex" json:"email"`
	Name         string     `gorm:"size:100" json:"name"`
	Password     string     `gorm:"size:255;not null" json:"-"`
	Role         Role       `gorm:"size:10;not null;default:user;check:chk_users_role,role IN ('admin','user')" json:"role"`
	Phone        string     `gorm:"size:20" json:"phone"`
	Dob          *time.Time `json:"dob"`
	Gender       string     `gorm:"size:20" json:"gender"`
	IdProofType  string     `gorm:"size:50" json:"idProofType"`
	ProfilePhoto string     `gorm:"size:512" json:"profilePhoto"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}

// DisplayName falls back to email when the user never set a name.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

type NewUser struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type CreateUserInput struct {
	Name         string     `form:"name" binding:"required"`
	Email        string     `form:"email" binding:"required,email"`
	Password     string     `form:"password" binding:"required,min=6"`
	Role         Role       `form:"role" binding:"omitempty,role"`
	Phone        string     `form:"phone"`
	Dob          *time.Time `form:"dob" time_format:"2006-01-02"`
	Gender       string     `form:"gender"`
	IdProofType  string     `form:"id_proof_type"`
	ProfilePhoto string     `form:"-"`
}

// UpdateUserInput changes only the supplied fields.
type UpdateUserInput struct {
	Name         *string    `form:"name"`
	Email        *string    `form:"email" binding:"omitempty,email"`
	Dob          *time.Time `form:"dob" time_format:"2006-01-02"`
	IdProofType  *string    `form:"id_proof_type"`
	Role         *Role      `form:"role" binding:"omitempty,role"`
	Phone        *string    `form:"phone"`
	Gender       *string    `form:"gender"`
	ProfilePhoto *string    `form:"-"`
}

type AdminUserRow struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            Role       `json:"role"`
	Dob             *time.Time `json:"dob"`
	CreatedAt       time.Time  `json:"created_at"`
	ProfilePhotoUrl string     `json:"profile_photo_url"`
	ZoneNames       string     `json:"zone_names"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Signup(ctx context.Context, db *gorm.DB, input NewUser) (*User, error) {
	return createUser(ctx, db, CreateUserInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     RoleUser,
	})
}

func AdminCreateUser(ctx context.Context, db *gorm.DB, input CreateUserInput) (*User, error) {
	if input.Role == "" {
		input.Role = RoleUser
	}
	return createUser(ctx, db, input)
}

func createUser(ctx context.Context, db *gorm.DB, input CreateUserInput) (*User, error) {
	email := normalizeEmail(input.Email)
	if !utils.IsValidEmail(email) {
		return nil, utils.ValidationError("Invalid email")
	}
	if len(input.Password) < minPasswordLength {
		return nil, utils.ValidationError("Password must be at least %d characters", minPasswordLength)
	}
	if !input.Role.IsValid() {
		return nil, utils.ValidationError("Invalid role")
	}
	if err := utils.ValidateUnique[User](ctx, db, "email", email, "", "User already exists"); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Password:     hashed,
		Role:         input.Role,
		Phone:        input.Phone,
		Dob:          input.Dob,
		Gender:       strings.TrimSpace(input.Gender),
		IdProofType:  input.IdProofType,
		ProfilePhoto: input.ProfilePhoto,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.ConflictError("User already exists", err)
		}
		return nil, err
	}
	return &user, nil
}

func Login(ctx context.Context, db *gorm.DB, email string, password string) (*User, error) {
	var user User
	err := db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&user).Error
	if err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, utils.ValidationError("Invalid credentials")
		}
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, utils.ValidationError("Invalid credentials")
	}
	return &user, nil
}

func GetUser(ctx context.Context, db *gorm.DB, id string) (*User, error) {
	var user User
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, utils.NotFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func ListUsers(ctx context.Context, db *gorm.DB) ([]User, error) {
	users := make([]User, 0)
	err := db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&users).Error
	return users, err
}

// AdminListUsers lists users newest first with their zone names joined.
func AdminListUsers(ctx context.Context, db *gorm.DB) ([]AdminUserRow, error) {
	users, err := ListUsers(ctx, db)
	if err != nil {
		return nil, err
	}

	type userZoneName struct {
		UserId string
		Name   string
	}
	var names []userZoneName
	err = db.WithContext(ctx).
		Table("user_zones").
		Select("user_zones.user_id, zones.name").
		Joins("JOIN zones ON zones.id = user_zones.zone_id").
		Order("zones.name").
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	byUser := make(map[string][]string, len(users))
	for _, n := range names {
		byUser[n.UserId] = append(byUser[n.UserId], n.Name)
	}

	rows := make([]AdminUserRow, 0, len(users))
	for _, u := range users {
		zoneNames := byUser[u.ID]
		sort.Strings(zoneNames)
		rows = append(rows, AdminUserRow{
			ID:              u.ID,
			Name:            u.Name,
			Email:           u.Email,
			Role:            u.Role,
			Dob:             u.Dob,
			CreatedAt:       u.CreatedAt,
			ProfilePhotoUrl: u.ProfilePhoto,
			ZoneNames:       strings.Join(zoneNames, ","),
		})
	}
	return rows, nil
}

func UpdateUserRole(ctx context.Context, db *gorm.DB, userId string, role Role) (*User, error) {
	if userId == "" {
		return nil, utils.ValidationError("userId is required")
	}
	if !role.IsValid() {
		return nil, utils.ValidationError("Invalid role")
	}
	return AdminUpdateUser(ctx, db, userId, UpdateUserInput{Role: &role})
}

func AdminUpdateUser(ctx context.Context, db *gorm.DB, id string, input UpdateUserInput) (*User, error) {
	user, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if !utils.IsValidEmail(email) {
			return nil, utils.ValidationError("Invalid email")
		}
		if err := utils.ValidateUnique[User](ctx, db, "email", email, id, "Email already in use"); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if input.Dob != nil {
		updates["dob"] = *input.Dob
	}
	if input.IdProofType != nil {
		updates["id_proof_type"] = *input.IdProofType
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, utils.ValidationError("Invalid role")
		}
		updates["role"] = *input.Role
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Gender != nil {
		updates["gender"] = strings.TrimSpace(*input.Gender)
	}
	if input.ProfilePhoto != nil {
		updates["profile_photo"] = *input.ProfilePhoto
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.ConflictError("Email already in use", err)
		}
		return nil, err
	}
	return GetUser(ctx, db, id)
}

// SetProfilePhoto stores url and returns the URL it replaced.
func SetProfilePhoto(ctx context.Context, db *gorm.DB, userId string, url string) (string, error) {
	user, err := GetUser(ctx, db, userId)
	if err != nil {
		return "", err
	}
	if err := db.WithContext(ctx).Model(user).Update("profile_photo", url).Error; err != nil {
		return "", err
	}
	return user.ProfilePhoto, nil
}

func ResetPassword(ctx context.Context, db *gorm.DB, userId string, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return utils.ValidationError("Password must be at least %d characters", minPasswordLength)
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	result := db.WithContext(ctx).Model(&User{}).Where("id = ?", userId).Update("password", hashed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.NotFoundError("User not found")
	}
	return nil
}

// DeleteUser removes the user and their zone assignments in one transaction.
// Users that still own expenses are rejected.
func DeleteUser(ctx context.Context, db *gorm.DB, userId string) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Where("id = ?", userId).Take(&user).Error; err != nil {
			if utils.IsRecordNotFound(err) {
				return utils.NotFoundError("User not found")
			}
			return err
		}
		if err := tx.Where("user_id = ?", userId).Delete(&UserZone{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if utils.IsForeignKeyViolation(err) {
		return utils.ConflictError("User has expenses and cannot be deleted", err)
	}
	return err
}
