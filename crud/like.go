package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"blogApi/domain"
	"blogApi/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Create runs validations needed for creating new Like database records.
// Whether the user already likes the post is left to the unique index.
func (lv *likeValidator) Create(ctx context.Context, like *domain.Like) error {
	if like.UserID <= 0 {
		return errs.UserIdValid
	}
	if err := postExists(ctx, lv.db, like.PostID); err != nil {
		return err
	}
	return lv.likeGorm.Create(ctx, like)
}

// Create stores the data from the Like object in a new database record.
func (lg *likeGorm) Create(ctx context.Context, like *domain.Like) error {
	err := lg.db.WithContext(ctx).Create(like).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Errorf(errs.ECONFLICT, "You have already liked this post")
	}
	return err
}

// postExists makes sure that the Post to be liked or commented on actually exists.
func postExists(ctx context.Context, db *gorm.DB, postID int) error {
	err := db.WithContext(ctx).First(&domain.Post{}, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "Post not found")
		}
		return err
	}
	return nil
}
