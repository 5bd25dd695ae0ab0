package crud

import (
	"context"
	"errors"
	"unicode/utf8"

	"gorm.io/gorm"

	"blogApi/domain"
	"blogApi/errs"
)

// PostService manages Posts. Posts are always looked up through the Blog
// they belong to. It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// ByBlogID makes sure the Blog exists before listing its Posts.
func (pv *postValidator) ByBlogID(ctx context.Context, blogID int) ([]domain.Post, error) {
	if err := pv.blogExists(ctx, blogID); err != nil {
		return nil, err
	}
	return pv.postGorm.ByBlogID(ctx, blogID)
}

// Validate runs the validations of Create without storing anything.
// The payload is checked before the Blog it is meant for.
func (pv *postValidator) Validate(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.normalize,
		pv.titleRequired,
		pv.titleMaxLength,
		pv.contentRequired)
	if err != nil {
		return err
	}
	return pv.blogExists(ctx, post.BlogID)
}

// Create runs validations needed for creating new Post database records.
func (pv *postValidator) Create(ctx context.Context, post *domain.Post) error {
	if err := pv.Validate(ctx, post); err != nil {
		return err
	}
	return pv.postGorm.Create(ctx, post)
}

// Update runs validations needed for replacing the title, content and image of a Post.
// Unlike a Blog update, title and content are both required.
func (pv *postValidator) Update(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post,
		pv.idValid,
		pv.normalize,
		pv.titleRequired,
		pv.titleMaxLength,
		pv.contentRequired)
	if err != nil {
		return err
	}
	return pv.postGorm.Update(ctx, post)
}

// Delete runs validations needed for deleting existing Post database records.
func (pv *postValidator) Delete(ctx context.Context, post *domain.Post) error {
	err := runPostValFns(post, pv.idValid)
	if err != nil {
		return err
	}
	return pv.postGorm.Delete(ctx, post)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// Failed validations are collected and returned as one error. Any other error is returned right away.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	var msgs []string
	for _, fn := range fns {
		if err := fn(post); err != nil {
			if errs.ErrorCode(err) != errs.EINVALID {
				return err
			}
			msgs = append(msgs, errs.ErrorMessage(err))
		}
	}
	return errs.Invalid(msgs)
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn func(post *domain.Post) error

// normalize sanitizes the Post's title and content.
func (pv *postValidator) normalize(post *domain.Post) error {
	post.Title = plainText(post.Title)
	post.Content = plainText(post.Content)
	return nil
}

// titleRequired makes sure that the title is not empty.
func (pv *postValidator) titleRequired(post *domain.Post) error {
	if post.Title == "" {
		return errs.Errorf(errs.EINVALID, "The title field is required.")
	}
	return nil
}

// titleMaxLength makes sure that the title does not exceed 255 characters.
func (pv *postValidator) titleMaxLength(post *domain.Post) error {
	if utf8.RuneCountInString(post.Title) > 255 {
		return errs.Errorf(errs.EINVALID, "The title must not be greater than 255 characters.")
	}
	return nil
}

// contentRequired makes sure that the content is not empty.
func (pv *postValidator) contentRequired(post *domain.Post) error {
	if post.Content == "" {
		return errs.Errorf(errs.EINVALID, "The content field is required.")
	}
	return nil
}

// idValid makes sure that the ID of a Post to be changed is greater than 0.
func (pv *postValidator) idValid(post *domain.Post) error {
	if post.ID <= 0 {
		return errs.IdInvalid
	}
	return nil
}

// blogExists makes sure that the Blog a Post belongs to actually exists.
func (pv *postValidator) blogExists(ctx context.Context, blogID int) error {
	err := pv.db.WithContext(ctx).First(&domain.Blog{}, "id = ?", blogID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "Blog not found")
		}
		return err
	}
	return nil
}

// ByBlogID retrieves all Posts of a Blog.
func (pg *postGorm) ByBlogID(ctx context.Context, blogID int) ([]domain.Post, error) {
	posts := []domain.Post{}
	err := pg.db.WithContext(ctx).
		Where("blog_id = ?", blogID).
		Order("id asc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ByID retrieves a single Post of a Blog.
// If the record doesn't exist, it returns errs.ENOTFOUND.
func (pg *postGorm) ByID(ctx context.Context, blogID, id int) (*domain.Post, error) {
	return pg.byID(pg.db.WithContext(ctx), blogID, id)
}

// Detail retrieves a single Post of a Blog, along with its Likes and Comments.
func (pg *postGorm) Detail(ctx context.Context, blogID, id int) (*domain.PostDetail, error) {
	db := pg.db.WithContext(ctx).
		Preload("Likes", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
	post, err := pg.byID(db, blogID, id)
	if err != nil {
		return nil, err
	}
	detail := &domain.PostDetail{
		Post:     *post,
		Likes:    post.Likes,
		Comments: post.Comments,
	}
	if detail.Likes == nil {
		detail.Likes = []domain.Like{}
	}
	if detail.Comments == nil {
		detail.Comments = []domain.Comment{}
	}
	return detail, nil
}

func (pg *postGorm) byID(db *gorm.DB, blogID, id int) (*domain.Post, error) {
	var post domain.Post
	err := db.Where("id = ? AND blog_id = ?", id, blogID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "Post not found")
		}
		return nil, err
	}
	return &post, nil
}

// Create stores the data from the Post object in a new database record.
func (pg *postGorm) Create(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Create(post).Error
}

// Update saves the title, content and image of an existing Post.
func (pg *postGorm) Update(ctx context.Context, post *domain.Post) error {
	res := pg.db.WithContext(ctx).
		Model(post).
		Select("Title", "Content", "ImageURL").
		Updates(post)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Errorf(errs.ENOTFOUND, "Post not found")
	}
	return nil
}

// Delete deletes a Post record in a single transaction, together with its Likes and Comments.
func (pg *postGorm) Delete(ctx context.Context, post *domain.Post) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Post{}, post.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Errorf(errs.ENOTFOUND, "Post not found")
		}
		return nil
	})
}
