package v1

import (
	"errors"
	"net/http"
	"strconv"

	"resume-management-backend/internal/delivery/http/response"
	"resume-management-backend/internal/domain"
	"resume-management-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

type ResumeHandler struct {
	resumeUC       domain.ResumeUsecase
	maxUploadBytes int64
}

func NewResumeHandler(protected *gin.RouterGroup, resumeUC domain.ResumeUsecase, maxUploadBytes int64, uploadLimit gin.HandlerFunc) {
	handler := &ResumeHandler{resumeUC: resumeUC, maxUploadBytes: maxUploadBytes}

	resumes := protected.Group("/resume")
	{
		resumes.POST("/upload", uploadLimit, handler.Upload)
		resumes.GET("", handler.List)
		resumes.GET("/:id", handler.Get)
		resumes.GET("/:id/pdf", handler.Download)
		resumes.GET("/scan/:id", handler.Scan)
		resumes.PATCH("/:id", handler.Update)
		resumes.DELETE("/remove/:id", handler.Remove)
	}
}

// Upload godoc
// @Summary      Upload a resume
// @Description  Stores a PDF resume, extracts its fields and saves them with a derived position and skills
// @Tags         resume
// @Accept       multipart/form-data
// @Produce      json
// @Param        resume  formData  file  true  "PDF resume"
// @Success      201  {object}  response.Response{data=domain.UploadResult}
// @Failure      400  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /resume/upload [post]
// @Security     BearerAuth
func (h *ResumeHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Error(apperror.New(http.StatusRequestEntityTooLarge, apperror.KindValidation, "File too large", err))
			return
		}
		c.Error(apperror.BadRequest("No file provided"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Failed to read uploaded file"))
		return
	}
	defer file.Close()

	operator := optionalString(c.GetString(string(domain.KeyUserEmail)))
	ownerID := optionalString(c.GetString(string(domain.KeyUserID)))

	result, err := h.resumeUC.Upload(c.Request.Context(), file, fileHeader.Filename, operator, ownerID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Resume uploaded successfully", result)
}

// List godoc
// @Summary      List resumes
// @Description  Newest first, one row per resume position. An empty page returns 404.
// @Tags         resume
// @Produce      json
// @Param        page       query  int  false  "Page number"  default(1)
// @Param        page_size  query  int  false  "Page size"    default(10)
// @Success      200  {object}  response.Response{data=[]domain.ResumeListItem}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resume [get]
// @Security     BearerAuth
func (h *ResumeHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.Error(apperror.BadRequest("page must be an integer"))
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil {
		c.Error(apperror.BadRequest("page_size must be an integer"))
		return
	}

	items, err := h.resumeUC.ListPaginated(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resumes retrieved successfully", items)
}

// Get godoc
// @Summary      Get a resume
// @Description  Resume detail with positions and skills, optionally with the PDF as a data URI
// @Tags         resume
// @Produce      json
// @Param        id           path   string  true   "Resume ID"
// @Param        include_pdf  query  bool    false  "Embed the PDF as pdf_base64"
// @Success      200  {object}  response.Response{data=domain.ResumeAggregate}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resume/{id} [get]
// @Security     BearerAuth
func (h *ResumeHandler) Get(c *gin.Context) {
	includePDF, _ := strconv.ParseBool(c.DefaultQuery("include_pdf", "false"))

	agg, err := h.resumeUC.GetAggregate(c.Request.Context(), c.Param("id"), includePDF)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume retrieved successfully", agg)
}

// Download godoc
// @Summary      Download the resume PDF
// @Tags         resume
// @Produce      application/pdf
// @Param        id  path  string  true  "Resume ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /resume/{id}/pdf [get]
// @Security     BearerAuth
func (h *ResumeHandler) Download(c *gin.Context) {
	id := c.Param("id")
	data, err := h.resumeUC.GetBlob(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+id+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// Scan godoc
// @Summary      Re-extract a stored resume
// @Description  Runs extraction on the stored PDF again and returns the fields without saving them
// @Tags         resume
// @Produce      json
// @Param        id  path  string  true  "Resume ID"
// @Success      200  {object}  response.Response{data=domain.ExtractedResume}
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /resume/scan/{id} [get]
// @Security     BearerAuth
func (h *ResumeHandler) Scan(c *gin.Context) {
	fields, err := h.resumeUC.Rescan(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume scanned successfully", fields)
}

// Update godoc
// @Summary      Update a resume
// @Description  Partial update. Detail fields: name, phone_number, birthday, working_exp, education, area, resume_url, operator. "positions" and "skills" arrays replace the whole collection. Unknown keys are ignored.
// @Tags         resume
// @Accept       json
// @Produce      json
// @Param        id     path  string  true  "Resume ID"
// @Param        patch  body  object  true  "Fields to change"
// @Success      200  {object}  response.Response{data=domain.ResumeAggregate}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resume/{id} [patch]
// @Security     BearerAuth
func (h *ResumeHandler) Update(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.BadRequest("Request body must be a JSON object"))
		return
	}

	agg, err := h.resumeUC.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume updated successfully", agg)
}

// Remove godoc
// @Summary      Delete a resume
// @Description  Deletes skills, positions and the resume, then the stored PDF on a best-effort basis
// @Tags         resume
// @Produce      json
// @Param        id  path  string  true  "Resume ID"
// @Success      200  {object}  response.Response{data=domain.RemoveResult}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /resume/remove/{id} [delete]
// @Security     BearerAuth
func (h *ResumeHandler) Remove(c *gin.Context) {
	result, err := h.resumeUC.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume deleted successfully", result)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
