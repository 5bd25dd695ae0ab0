package domain

import (
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"
)

const (
	// OwnerTypeBlog expresses that an Image belongs to the blogs of a User.
	OwnerTypeBlog = "blogs"
	// OwnerTypePost expresses that an Image belongs to the posts of a Blog.
	OwnerTypePost = "posts"
	// ImagesURLPrefix is the public url path stored images are served under.
	ImagesURLPrefix = "images"
	// MaxUploadSize determines the maximum filesize of an image to be uploaded.
	MaxUploadSize int64 = 2048 << 10 // 2048 Kilobyte
)

// Image represents an uploaded image. Images are only stored as files and
// have no dedicated table in the database. Blogs and Posts reference them
// by the relative URL in their ImageURL field.
// The directory an Image is stored in is determined by its owner:
// a Blog image of the User with ID 1 ends up in images/blogs/1/<name>.png,
// a Post image in the Blog with ID 2 in images/posts/2/<name>.jpeg.
// File contains the actual image data that will be stored.
type Image struct {
	URL         string         `json:"url"`
	OwnerType   string         `json:"-"`
	OwnerID     int            `json:"-"`
	File        multipart.File `json:"-"`
	Filename    string         `json:"-"`
	Extension   string         `json:"-"`
	ContentType string         `json:"-"`
}

// ImageService is a set of methods to manipulate and work with the Image model and respective image files.
type ImageService interface {
	Create(img *Image) error
	Delete(img *Image) error
	DeleteAll(ownerType string, ownerID int) error
}

// Path returns the absolute url path of an image.
func (i *Image) Path() string {
	temp := url.URL{
		Path: "/" + i.RelativePath(),
	}
	return temp.String()
}

// RelativePath returns the url path of an image relative to the server root.
func (i *Image) RelativePath() string {
	return fmt.Sprintf("%v/%v/%v/%v", ImagesURLPrefix, i.OwnerType, i.OwnerID, i.Filename)
}

// ImageFromURL parses a relative image url as produced by RelativePath back
// into an Image. It returns false if the url was not produced by RelativePath.
func ImageFromURL(u string) (*Image, bool) {
	parts := strings.Split(strings.TrimPrefix(u, "/"), "/")
	if len(parts) != 4 || parts[0] != ImagesURLPrefix {
		return nil, false
	}
	if parts[1] != OwnerTypeBlog && parts[1] != OwnerTypePost {
		return nil, false
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil || id <= 0 {
		return nil, false
	}
	if parts[3] == "" || parts[3] == "." || parts[3] == ".." {
		return nil, false
	}
	return &Image{
		URL:       u,
		OwnerType: parts[1],
		OwnerID:   id,
		Filename:  parts[3],
	}, true
}
