package crud

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/segmentio/ksuid"

	"blogApi/domain"
	"blogApi/errs"
)

// ImageService manages Images.
// It implements the domain.ImageService interface.
type ImageService struct {
	imageValidator
}

// imageValidator runs validations on incoming Image data.
// On success, it passes the data on to imageCrud.
// Otherwise, it returns the error of the validation that has failed.
type imageValidator struct {
	imageCrud
}

// imageCrud runs CRUD operations on the filesystem using incoming Image data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type imageCrud struct {
	baseDir string
}

// NewImageService returns an instance of ImageService storing images below baseDir.
func NewImageService(baseDir string) *ImageService {
	return &ImageService{
		imageValidator{
			imageCrud{
				baseDir: baseDir,
			},
		},
	}
}

// Ensure the ImageService struct properly implements the domain.ImageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ImageService = &ImageService{}

// contentTypes maps the accepted content types to the extension they are stored with.
var contentTypes = map[string]string{
	"image/jpeg": ".jpeg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Create runs validations needed for storing uploaded images in the filesystem.
// On success, the Image's URL holds the relative url it can be fetched from.
func (iv *imageValidator) Create(img *domain.Image) error {
	err := runImageValFns(img,
		iv.ownerValid,
		iv.extensionValid,
		iv.contentTypeValid,
		iv.contentTypeExtensionMatch,
		iv.belowMaxSize,
		iv.fileNameUnique,
	)
	if err != nil {
		return err
	}
	return iv.imageCrud.Create(img)
}

// runImageValFns runs any number of functions of type imageValFn on the passed in Image object.
// Validations depend on each other, so the first failing one ends the run.
func runImageValFns(img *domain.Image, fns ...imageValFn) error {
	for _, fn := range fns {
		if err := fn(img); err != nil {
			return err
		}
	}
	return nil
}

// A imageValFn is any function that takes in a pointer to a domain.Image object and returns an error.
type imageValFn func(img *domain.Image) error

// ownerValid makes sure the Image will end up in a directory owned by someone.
func (iv *imageValidator) ownerValid(img *domain.Image) error {
	if img.OwnerType != domain.OwnerTypeBlog && img.OwnerType != domain.OwnerTypePost {
		return fmt.Errorf("unknown image owner type %q", img.OwnerType)
	}
	if img.OwnerID <= 0 {
		return errs.IdInvalid
	}
	if img.File == nil {
		return errs.Errorf(errs.EINVALID, "The image must be a file.")
	}
	return nil
}

// belowMaxSize makes sure that the image to be uploaded does not exceed MaxUploadSize.
func (iv *imageValidator) belowMaxSize(img *domain.Image) error {
	size, err := img.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	if size > domain.MaxUploadSize {
		return errs.Errorf(errs.EINVALID,
			"The image must not be greater than %s.", humanize.IBytes(uint64(domain.MaxUploadSize)))
	}
	return nil
}

// contentTypeValid makes sure that the image to be uploaded is a jpeg, png or gif file
// by sniffing its first bytes.
func (iv *imageValidator) contentTypeValid(img *domain.Image) error {
	buffer := make([]byte, 512)
	n, err := img.File.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if err = resetFilePointer(img); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer[:n])
	if _, ok := contentTypes[contentType]; !ok {
		return errs.Errorf(errs.EINVALID, "The image must be a file of type: jpeg, png, gif.")
	}
	img.ContentType = contentType
	return nil
}

// contentTypeExtensionMatch makes sure that the image's filename extension and content type match.
func (iv *imageValidator) contentTypeExtensionMatch(img *domain.Image) error {
	if contentTypes[img.ContentType] != img.Extension {
		return errs.Errorf(errs.EINVALID,
			"The image content type %s does not match its extension %s.", img.ContentType, img.Extension)
	}
	return nil
}

// extensionValid makes sure that the image to be uploaded has the extension .jpeg,
// .jpg, .png or .gif. If the extension is .jpg it will be renamed to .jpeg for consistency.
func (iv *imageValidator) extensionValid(img *domain.Image) error {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	if ext != ".png" && ext != ".jpeg" && ext != ".gif" {
		return errs.Errorf(errs.EINVALID, "The image must be a file of type: jpeg, png, gif.")
	}
	img.Extension = ext
	return nil
}

// fileNameUnique replaces the image's name with a unique, time sortable ksuid.
func (iv *imageValidator) fileNameUnique(img *domain.Image) error {
	img.Filename = ksuid.New().String() + img.Extension
	return nil
}

// resetFilePointer sets the file pointer back to beginning of the file,
// so that subsequent reads can properly read from the beginning again.
func resetFilePointer(img *domain.Image) error {
	_, err := img.File.Seek(0, io.SeekStart)
	return err
}

// Create takes a domain.Image object, creates a path to store the image, creates a
// destination file inside that path, and copies the file data from the domain.Image object
// into the destination file. If the path already exists, that one will be used.
// Images are only stored in the filesystem and have no dedicated table in the database.
func (ic *imageCrud) Create(img *domain.Image) error {
	dir, err := ic.mkImagePath(img.OwnerType, img.OwnerID)
	if err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(dir, img.Filename))
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err = io.Copy(dst, img.File); err != nil {
		return err
	}
	img.URL = img.RelativePath()
	return nil
}

// Delete removes a specific image from the filesystem.
// An image that is already gone is not an error.
func (ic *imageCrud) Delete(img *domain.Image) error {
	path := filepath.Join(ic.imagePath(img.OwnerType, img.OwnerID), filepath.Base(img.Filename))
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// DeleteAll removes an entire directory containing images from the filesystem.
func (ic *imageCrud) DeleteAll(ownerType string, ownerID int) error {
	return os.RemoveAll(ic.imagePath(ownerType, ownerID))
}

// mkImagePath creates a filesystem path based on an image's ownerType and ownerID.
// This results in directories like: <baseDir>/blogs/1/ and <baseDir>/posts/2/.
func (ic *imageCrud) mkImagePath(ownerType string, ownerID int) (string, error) {
	imagePath := ic.imagePath(ownerType, ownerID)
	err := os.MkdirAll(imagePath, 0755)
	if err != nil {
		return "", err
	}
	return imagePath, nil
}

// imagePath builds the name of a path based on the base directory for images,
// an image's ownerType and its ownerID.
func (ic *imageCrud) imagePath(ownerType string, ownerID int) string {
	return filepath.Join(ic.baseDir, ownerType, strconv.Itoa(ownerID))
}
