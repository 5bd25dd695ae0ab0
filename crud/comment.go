package crud

import (
	"context"

	"gorm.io/gorm"

	"blogApi/domain"
	"blogApi/errs"
)

// CommentService manages Comments.
// It implements the domain.CommentService interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
// Otherwise, it returns the error of the validation that has failed.
type commentValidator struct {
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

// Ensure the CommentService struct properly implements the domain.CommentService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records.
func (cv *commentValidator) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.UserID <= 0 {
		return errs.UserIdValid
	}
	if err := postExists(ctx, cv.db, comment.PostID); err != nil {
		return err
	}
	err := runCommentValFns(comment,
		cv.contentNormalize,
		cv.contentRequired)
	if err != nil {
		return err
	}
	return cv.commentGorm.Create(ctx, comment)
}

// runCommentValFns runs any number of functions of type commentValFn on the passed in Comment object.
func runCommentValFns(comment *domain.Comment, fns ...commentValFn) error {
	var msgs []string
	for _, fn := range fns {
		if err := fn(comment); err != nil {
			if errs.ErrorCode(err) != errs.EINVALID {
				return err
			}
			msgs = append(msgs, errs.ErrorMessage(err))
		}
	}
	return errs.Invalid(msgs)
}

// A commentValFn is any function that takes in a pointer to a domain.Comment object and returns an error.
type commentValFn func(comment *domain.Comment) error

// contentNormalize strips markup from the comment.
func (cv *commentValidator) contentNormalize(comment *domain.Comment) error {
	comment.Content = plainText(comment.Content)
	return nil
}

// contentRequired makes sure that the comment is not empty.
func (cv *commentValidator) contentRequired(comment *domain.Comment) error {
	if comment.Content == "" {
		return errs.Errorf(errs.EINVALID, "The content field is required.")
	}
	return nil
}

// Create stores the data from the Comment object in a new database record.
func (cg *commentGorm) Create(ctx context.Context, comment *domain.Comment) error {
	return cg.db.WithContext(ctx).Create(comment).Error
}
