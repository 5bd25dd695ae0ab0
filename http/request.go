package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dustin/go-humanize"

	"blogApi/domain"
	"blogApi/errs"
)

const (
	// maxBodySize caps multipart bodies: one image plus some room for the text fields.
	maxBodySize = domain.MaxUploadSize + 1<<20
	// maxJSONSize caps json bodies.
	maxJSONSize int64 = 1 << 20
)

// upload is an image file sent along with a multipart request.
type upload struct {
	file     multipart.File
	filename string
}

// Close closes the uploaded file, if there is one.
func (u *upload) Close() error {
	if u == nil || u.file == nil {
		return nil
	}
	return u.file.Close()
}

// registerRequest is the body of POST /register.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the body of POST /login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// blogRequest is the body of POST /blogs and PUT /blogs/{id}.
// Fields missing from the request are nil.
type blogRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	image       *upload
}

// postRequest is the body of POST and PUT /blogs/{blogId}/posts.
type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	image   *upload
}

// commentRequest is the body of POST /posts/{postId}/comment.
type commentRequest struct {
	Content string `json:"content"`
}

// decodeJSON decodes the request's json body of limited size into dst.
// An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONSize)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errs.Errorf(errs.EINVALID,
			"The request body must not be greater than %s.", humanize.IBytes(uint64(maxJSONSize)))
	}
	return errs.Errorf(errs.EINVALID, "Invalid json body.")
}

// parseMultipart parses a multipart/form-data body of limited size.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.Errorf(errs.EINVALID,
				"The image must not be greater than %s.", humanize.IBytes(uint64(domain.MaxUploadSize)))
		}
		return errs.Errorf(errs.EINVALID, "Invalid multipart body.")
	}
	return nil
}

// formValue returns the value of a multipart field, or nil if the field was not sent.
func formValue(r *http.Request, key string) *string {
	vs, ok := r.MultipartForm.Value[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

// formImage opens the file sent in the "image" field. It returns nil if there is none.
func formImage(r *http.Request) (*upload, error) {
	fhs := r.MultipartForm.File["image"]
	if len(fhs) == 0 {
		if formValue(r, "image") != nil {
			return nil, errs.Errorf(errs.EINVALID, "The image must be a file.")
		}
		return nil, nil
	}
	f, err := fhs[0].Open()
	if err != nil {
		return nil, err
	}
	return &upload{file: f, filename: fhs[0].Filename}, nil
}

// readBlogRequest reads a blogRequest from either a json or a multipart body.
// The caller has to close the returned request's image.
func readBlogRequest(w http.ResponseWriter, r *http.Request) (*blogRequest, error) {
	var req blogRequest
	if !isMultipart(r) {
		if err := decodeJSON(w, r, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}
	if err := parseMultipart(w, r); err != nil {
		return nil, err
	}
	req.Title = formValue(r, "title")
	req.Description = formValue(r, "description")
	req.ImageURL = formValue(r, "image_url")
	img, err := formImage(r)
	if err != nil {
		return nil, err
	}
	req.image = img
	return &req, nil
}

// readPostRequest reads a postRequest from either a json or a multipart body.
// The caller has to close the returned request's image.
func readPostRequest(w http.ResponseWriter, r *http.Request) (*postRequest, error) {
	var req postRequest
	if !isMultipart(r) {
		if err := decodeJSON(w, r, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}
	if err := parseMultipart(w, r); err != nil {
		return nil, err
	}
	if v := formValue(r, "title"); v != nil {
		req.Title = *v
	}
	if v := formValue(r, "content"); v != nil {
		req.Content = *v
	}
	img, err := formImage(r)
	if err != nil {
		return nil, err
	}
	req.image = img
	return &req, nil
}

// storeImage validates and stores an uploaded image for the given owner.
func (s *Server) storeImage(u *upload, ownerType string, ownerID int) (*domain.Image, error) {
	img := &domain.Image{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		File:      u.file,
		Filename:  u.filename,
	}
	if err := s.is.Create(img); err != nil {
		return nil, err
	}
	return img, nil
}

// removeImage deletes the stored image at url, if url points to an image of the given owner.
// Failures are logged only, the request they happen in has succeeded already.
func (s *Server) removeImage(r *http.Request, url *string, ownerType string, ownerID int) {
	if url == nil {
		return
	}
	img, ok := domain.ImageFromURL(*url)
	if !ok || img.OwnerType != ownerType || img.OwnerID != ownerID {
		return
	}
	if err := s.is.Delete(img); err != nil {
		errs.LogError(r, err)
	}
}
