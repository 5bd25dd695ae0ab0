package crud

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"blogApi/domain"
	"blogApi/errs"
)

// BlogService manages Blogs. Every mutation is scoped to the owner's ID,
// a Blog that exists but belongs to someone else looks exactly like a
// Blog that doesn't exist. It implements the domain.BlogService interface.
type BlogService struct {
	blogValidator
}

// blogValidator runs validations on incoming Blog data.
// On success, it passes the data on to blogGorm.
// Otherwise, it returns the error of the validation that has failed.
type blogValidator struct {
	blogGorm
}

// blogGorm runs CRUD operations on the database using incoming Blog data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type blogGorm struct {
	db *gorm.DB
}

// NewBlogService returns an instance of BlogService.
func NewBlogService(db *gorm.DB) *BlogService {
	return &BlogService{
		blogValidator{
			blogGorm{
				db: db,
			},
		},
	}
}

// Ensure the BlogService struct properly implements the domain.BlogService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.BlogService = &BlogService{}

// Create runs validations needed for creating new Blog database records.
func (bv *blogValidator) Create(ctx context.Context, blog *domain.Blog) error {
	err := runBlogValFns(blog,
		bv.userIdValid,
		bv.normalize,
		bv.titleRequired,
		bv.titleMaxLength,
		bv.descriptionRequired,
		bv.slugify)
	if err != nil {
		return err
	}
	return bv.blogGorm.Create(ctx, blog)
}

// Update applies the fields present in upd to the user's Blog with the given ID.
func (bv *blogValidator) Update(ctx context.Context, userID, id int, upd *domain.BlogUpdate) (*domain.Blog, error) {
	blog, err := bv.blogGorm.ByOwner(ctx, userID, id)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, errs.Errorf(errs.ENOTFOUND, "Blog not found or you do not have permission to update it")
		}
		return nil, err
	}
	if upd.Title != nil {
		blog.Title = *upd.Title
	}
	if upd.Description != nil {
		blog.Description = *upd.Description
	}
	if upd.ImageURL != nil {
		blog.ImageURL = upd.ImageURL
	}
	err = runBlogValFns(blog,
		bv.normalize,
		bv.titleRequired,
		bv.titleMaxLength,
		bv.descriptionRequired,
		bv.slugify)
	if err != nil {
		return nil, err
	}
	if err := bv.blogGorm.Update(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// Delete deletes the user's Blog with the given ID along with all of its Posts.
func (bv *blogValidator) Delete(ctx context.Context, userID, id int) (*domain.Blog, error) {
	if userID <= 0 {
		return nil, errs.UserIdValid
	}
	blog, err := bv.blogGorm.Delete(ctx, userID, id)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		return nil, errs.Errorf(errs.ENOTFOUND, "Blog not found or you do not have permission to delete it")
	}
	return blog, err
}

// runBlogValFns runs any number of functions of type blogValFn on the passed in Blog object.
// Failed validations are collected and returned as one error. Any other error is returned right away.
func runBlogValFns(blog *domain.Blog, fns ...blogValFn) error {
	var msgs []string
	for _, fn := range fns {
		if err := fn(blog); err != nil {
			if errs.ErrorCode(err) != errs.EINVALID {
				return err
			}
			msgs = append(msgs, errs.ErrorMessage(err))
		}
	}
	return errs.Invalid(msgs)
}

// A blogValFn is any function that takes in a pointer to a domain.Blog object and returns an error.
type blogValFn func(blog *domain.Blog) error

// normalize sanitizes the Blog's title and description.
func (bv *blogValidator) normalize(blog *domain.Blog) error {
	blog.Title = plainText(blog.Title)
	blog.Description = plainText(blog.Description)
	return nil
}

// titleRequired makes sure that the title is not empty.
func (bv *blogValidator) titleRequired(blog *domain.Blog) error {
	if blog.Title == "" {
		return errs.Errorf(errs.EINVALID, "The title field is required.")
	}
	return nil
}

// titleMaxLength makes sure that the title does not exceed 255 characters.
func (bv *blogValidator) titleMaxLength(blog *domain.Blog) error {
	if utf8.RuneCountInString(blog.Title) > 255 {
		return errs.Errorf(errs.EINVALID, "The title must not be greater than 255 characters.")
	}
	return nil
}

// descriptionRequired makes sure that the description is not empty.
func (bv *blogValidator) descriptionRequired(blog *domain.Blog) error {
	if blog.Description == "" {
		return errs.Errorf(errs.EINVALID, "The description field is required.")
	}
	return nil
}

// slugify derives the Blog's slug from its title.
func (bv *blogValidator) slugify(blog *domain.Blog) error {
	blog.Slug = slug.Make(blog.Title)
	return nil
}

// userIdValid ensures that the userId is not empty.
func (bv *blogValidator) userIdValid(blog *domain.Blog) error {
	if blog.UserID <= 0 {
		return errs.UserIdValid
	}
	return nil
}

// ByUserID retrieves all Blogs of a user.
func (bg *blogGorm) ByUserID(ctx context.Context, userID int) ([]domain.Blog, error) {
	blogs := []domain.Blog{}
	err := bg.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

// ByID retrieves a single Blog by ID, regardless of its owner.
func (bg *blogGorm) ByID(ctx context.Context, id int) (*domain.Blog, error) {
	var blog domain.Blog
	err := bg.db.WithContext(ctx).First(&blog, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "Blog not found")
		}
		return nil, err
	}
	return &blog, nil
}

// ByOwner retrieves a single Blog by ID, if it belongs to the given user.
func (bg *blogGorm) ByOwner(ctx context.Context, userID, id int) (*domain.Blog, error) {
	var blog domain.Blog
	err := bg.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&blog).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "Blog not found")
		}
		return nil, err
	}
	return &blog, nil
}

// Create stores the data from the Blog object in a new database record.
func (bg *blogGorm) Create(ctx context.Context, blog *domain.Blog) error {
	return bg.db.WithContext(ctx).Create(blog).Error
}

// Update saves changes to an existing Blog record.
func (bg *blogGorm) Update(ctx context.Context, blog *domain.Blog) error {
	return bg.db.WithContext(ctx).Save(blog).Error
}

// Delete deletes a user's Blog in a single transaction, together with its Posts
// and their Likes and Comments. Either all of them are gone afterwards or none.
// The returned Blog carries the deleted Posts, so their images can be cleaned up.
func (bg *blogGorm) Delete(ctx context.Context, userID, id int) (*domain.Blog, error) {
	var blog domain.Blog
	err := bg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Posts").
			Where("id = ? AND user_id = ?", id, userID).
			First(&blog).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "Blog not found")
			}
			return err
		}
		if len(blog.Posts) > 0 {
			postIDs := make([]int, len(blog.Posts))
			for i, p := range blog.Posts {
				postIDs[i] = p.ID
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&domain.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&domain.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("blog_id = ?", blog.ID).Delete(&domain.Post{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&domain.Blog{}, blog.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &blog, nil
}
