// Package file provides HTTP handlers for file-related operations.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	cvlib "jobpath-backend/internal/cv"
	"jobpath-backend/internal/database"
	"jobpath-backend/internal/model"
	"jobpath-backend/internal/utilities"
)

// FileController handles file related endpoints
type FileController struct {
	DB      *database.DBinstanceStruct
	Storage StorageClient
	CVs     *cvlib.Store
}

const (
	cvObjectPrefix     = "cvs"
	logoObjectPrefix   = "logos"
	bannerObjectPrefix = "banners"
)

// NewFileController creates a new instance of FileController
func NewFileController(db *database.DBinstanceStruct, storage StorageClient) *FileController {
	jc := &FileController{
		DB:      db,
		Storage: storage,
	}
	if db != nil {
		jc.CVs = cvlib.NewStore(db)
	}
	return jc
}

// ResolveURL turns a stored path into a fetchable URL. Absolute and
// app-served URLs pass through untouched; bare object names are signed.
func (jc *FileController) ResolveURL(_ context.Context, path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "/") {
		return path, nil
	}
	if jc.Storage == nil {
		return "", fmt.Errorf("cloud storage is disabled while %q is stored remotely", path)
	}
	return jc.Storage.SignedURL(path)
}

// UploadCV handles uploading a CV file for a candidate and adding it to the
// candidate's CV library as an uploaded record.
// @Summary Upload CV file for candidate
// @Description Only file that smaller than 10 MB with .pdf extension is permitted
// @Tags CV
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param cv formData file true "Upload your CV file"
// @Success 201 {object} model.CVRecord "Successfully upload CV"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as candidate"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /cv/upload [post]
func (jc *FileController) UploadCV(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	rawFile, err := c.FormFile("cv")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	extension := strings.ToLower(filepath.Ext(rawFile.Filename))
	if extension != ".pdf" {
		c.JSON(http.StatusUnsupportedMediaType, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unsupported file extension: %s", extension),
		})
		return
	}

	fileBytes, ok := jc.readFormFile(c, rawFile)
	if !ok {
		return
	}

	fileURL, err := jc.persistBytes(fileBytes, extension, cvObjectPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store CV: %s", err.Error()),
		})
		return
	}

	rec := model.CVRecord{
		UserID:   user.ID,
		Type:     model.CVTypeUploaded,
		Title:    rawFile.Filename,
		FileURL:  fileURL,
		FileName: rawFile.Filename,
	}
	if _, err := jc.CVs.Save(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save CV record: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// companyUpload reads an image file from a company upload request.
func (jc *FileController) companyUpload(c *gin.Context, fName string) (model.CompanyUser, []byte, string) {
	var company = model.CompanyUser{}

	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return company, nil, ""
	}

	// Retrieve original profile from DB
	if err := jc.DB.Preload("User").Where("user_id = ?", user.ID.String()).First(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user information from database: %s", err.Error()),
		})
		return company, nil, ""
	}

	rawFile, err := c.FormFile(fName)
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: err.Error(),
		})
		return company, nil, ""
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return company, nil, ""
	}

	allowedExtensions := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}
	extension := strings.ToLower(filepath.Ext(rawFile.Filename))

	if !allowedExtensions[extension] {
		c.JSON(http.StatusUnsupportedMediaType, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unsupported file extension: %s", extension),
		})
		return company, nil, ""
	}

	fileBytes, ok := jc.readFormFile(c, rawFile)
	if !ok {
		return company, nil, ""
	}

	return company, fileBytes, extension
}

// UploadLogo handles a company's logo upload and updates the company profile.
// @Summary Upload logo file for company
// @Description Only file that smaller than 10 MB with .jpg, .jpeg, or .png extension is permitted
// @Tags Company
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param logo formData file true "Upload your logo file"
// @Success 200 {object} model.CompanyUser "Successfully upload logo"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as employer"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/profile/logo [post]
func (jc *FileController) UploadLogo(c *gin.Context) {
	company, fileBytes, fileExtension := jc.companyUpload(c, "logo")

	if fileBytes == nil {
		return
	}

	url, err := jc.persistBytes(fileBytes, fileExtension, logoObjectPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store logo: %s", err.Error()),
		})
		return
	}
	company.LogoURL = url

	if err := jc.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user information: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

// UploadBanner handles a company's banner upload and updates the company profile.
// @Summary Upload banner file for company
// @Description Only file that smaller than 10 MB with .jpg, .jpeg, or .png extension is permitted
// @Tags Company
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param banner formData file true "Upload your banner file"
// @Success 200 {object} model.CompanyUser "Successfully upload banner"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as employer"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/profile/banner [post]
func (jc *FileController) UploadBanner(c *gin.Context) {
	company, fileBytes, fileExtension := jc.companyUpload(c, "banner")

	if fileBytes == nil {
		return
	}

	url, err := jc.persistBytes(fileBytes, fileExtension, bannerObjectPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store banner: %s", err.Error()),
		})
		return
	}
	company.BannerURL = url

	if err := jc.DB.Session(&gorm.Session{FullSaveAssociations: true}).Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user information: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

// GetFile retrieves a file and sends it as a downloadable attachment.
// @Summary Retrieve downloadable attachment
// @Tags File
// @Produce octet-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of wanted file"
// @Success 200 {string} binary "Successfully retrieve file"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Given file id not found"
// @Failure 500 {object} utilities.ErrorResponse "Fail to send file content"
// @Router /file/{id} [get]
func (jc *FileController) GetFile(c *gin.Context) {
	var file model.File
	id := c.Param("id")

	if err := jc.DB.First(&file, id).Error; err != nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}

	jc.writeFileResponse(c, &file)
}

func (jc *FileController) readFormFile(c *gin.Context, rawFile *multipart.FileHeader) ([]byte, bool) {
	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot open file"})
		return nil, false
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close form file: %v", err)
		}
	}()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot read file"})
		return nil, false
	}
	return fileBytes, true
}

func (jc *FileController) writeFileResponse(c *gin.Context, file *model.File) {
	c.Writer.Header().Set("Content-Disposition", "attachment; filename="+fmt.Sprint(file.ID)+file.Extension)
	c.Writer.Header().Set("Content-Type", "application/octet-stream")

	if file.StorageObjectName != nil {
		if jc.Storage == nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Cloud storage is disabled while the requested file is stored remotely",
			})
			return
		}
		reader, size, err := jc.Storage.DownloadFile(*file.StorageObjectName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to download file from storage: %s", err.Error()),
			})
			return
		}
		defer func() {
			if err := reader.Close(); err != nil {
				log.Printf("failed to close storage reader: %v", err)
			}
		}()

		if size > 0 {
			c.Writer.Header().Set("Content-Length", fmt.Sprint(size))
		}
		if _, err := io.Copy(c.Writer, reader); err != nil {
			jc.handleWriterError(c)
		}
		return
	}

	c.Writer.Header().Set("Content-Length", fmt.Sprint(len(file.Content)))
	if _, err := c.Writer.Write(file.Content); err != nil {
		jc.handleWriterError(c)
	}
}

func (jc *FileController) handleWriterError(c *gin.Context) {
	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to send file content",
		})
	} else {
		c.Abort()
	}
}

// persistBytes stores the bytes in cloud storage when configured, falling
// back to a database row served through the file endpoint. The returned
// string is what callers should record: an object name in the first case, an
// app-served path in the second.
func (jc *FileController) persistBytes(fileBytes []byte, extension, prefix string) (string, error) {
	if jc.Storage == nil {
		f := model.File{Content: fileBytes, Extension: extension}
		if err := jc.DB.Create(&f).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("/api/v1/file/%d", f.ID), nil
	}

	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), extension)
	if err := jc.Storage.UploadFile(objectName, bytes.NewReader(fileBytes)); err != nil {
		return "", err
	}
	return objectName, nil
}
