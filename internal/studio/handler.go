package studio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/eleven-am/aura-studio/internal/media"
	"github.com/eleven-am/aura-studio/internal/session"
	"github.com/eleven-am/aura-studio/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	pageTitle = "Image Description Generator"

	stageUpload      = "upload"
	stageDescription = "description"
	stageAura        = "aura"

	DefaultMaxUploadBytes = 20 << 20
)

type Handler struct {
	service        *Service
	sessions       *session.Manager
	renderer       *Renderer
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(service *Service, sessions *session.Manager, renderer *Renderer, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		service:        service,
		sessions:       sessions,
		renderer:       renderer,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.POST("/upload", h.Upload)
	e.POST("/describe", h.Describe)
	e.POST("/aura", h.Aura)
	e.POST("/reset", h.Reset)
	e.GET("/upload/image", h.UploadedImage)
	e.GET("/session", h.Session)
}

type SessionResponse struct {
	ID             string `json:"id"`
	HasImage       bool   `json:"has_image"`
	ImageName      string `json:"image_name,omitempty"`
	HasDescription bool   `json:"has_description"`
	Description    string `json:"description,omitempty"`
}

type AuraResponse struct {
	URL           string `json:"url"`
	Prompt        string `json:"prompt"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

func (h *Handler) Index(c echo.Context) error {
	state, err := h.sessions.Load(c)
	if err != nil {
		return h.sessionError(err)
	}
	return h.render(c, http.StatusOK, h.pageData(state))
}

func (h *Handler) Upload(c echo.Context) error {
	state, err := h.sessions.Load(c)
	if err != nil {
		return h.sessionError(err)
	}

	img, status, message := h.readUpload(c)
	if message != "" {
		return h.renderError(c, status, state, stageUpload, message)
	}

	ctx := c.Request().Context()
	if err := h.service.Upload(ctx, state, img); err != nil {
		h.logger.Error("upload failed", "error", err, "session_id", state.ID)
		return h.renderError(c, statusFor(err), state, stageUpload, "Failed to store the uploaded image.")
	}

	if err := h.sessions.Save(c, state); err != nil {
		return h.sessionError(err)
	}
	return h.respond(c, state)
}

func (h *Handler) Describe(c echo.Context) error {
	state, err := h.sessions.Load(c)
	if err != nil {
		return h.sessionError(err)
	}

	if _, err := h.service.Describe(c.Request().Context(), state); err != nil {
		return h.renderError(c, statusFor(err), state, stageDescription, describeFailure(err))
	}

	if err := h.sessions.Save(c, state); err != nil {
		return h.sessionError(err)
	}
	return h.respond(c, state)
}

func (h *Handler) Aura(c echo.Context) error {
	state, err := h.sessions.Load(c)
	if err != nil {
		return h.sessionError(err)
	}

	result, err := h.service.GenerateAura(c.Request().Context(), state)
	if err != nil {
		return h.renderError(c, statusFor(err), state, stageAura, auraFailure(err))
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, AuraResponse{
			URL:           result.URL,
			Prompt:        result.Prompt,
			RevisedPrompt: result.RevisedPrompt,
		})
	}

	data := h.pageData(state)
	data.AuraURL = result.URL
	return h.render(c, http.StatusOK, data)
}

// Reset discards the session, its uploaded image and its description.
func (h *Handler) Reset(c echo.Context) error {
	state, err := h.sessions.Load(c)
	if err != nil {
		return h.sessionError(err)
	}

	h.service.Reset(c.Request().Context(), state)
	if err := h.sessions.Destroy(c, state); err != nil {
		return h.sessionError(err)
	}

	if wantsJSON(c) {
		return c.NoContent(http.StatusNoContent)
	}
	return h.render(c, http.StatusOK, h.pageData(&session.State{}))
}

func (h *Handler) UploadedImage(c echo.Context) error {
	state, err := h.sessions.Load(c)
	if err != nil {
		return h.sessionError(err)
	}
	if !state.HasImage() {
		return shared.NotFound("image_not_found", "no image uploaded")
	}

	data, err := os.ReadFile(state.ImagePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return shared.NotFound("image_not_found", "no image uploaded")
		}
		h.logger.Error("failed to read upload", "error", err, "session_id", state.ID)
		return shared.InternalError("read_failed", "failed to read uploaded image")
	}

	contentType := state.ContentType
	if contentType == "" {
		contentType = media.DetectContentType(data, "")
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, contentType, data)
}

func (h *Handler) Session(c echo.Context) error {
	state, err := h.sessions.Load(c)
	if err != nil {
		return h.sessionError(err)
	}
	return c.JSON(http.StatusOK, sessionResponse(state))
}

func sessionResponse(state *session.State) SessionResponse {
	return SessionResponse{
		ID:             state.ID,
		HasImage:       state.HasImage(),
		ImageName:      state.ImageName,
		HasDescription: state.HasDescription(),
		Description:    state.Description,
	}
}

// readUpload returns the uploaded image, or an HTTP status and a message to
// show in the page.
func (h *Handler) readUpload(c echo.Context) (media.Image, int, string) {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUploadBytes+(1<<20))
	tooLarge := fmt.Sprintf("The image is larger than %s.", formatSize(h.maxUploadBytes))

	file, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return media.Image{}, http.StatusRequestEntityTooLarge, tooLarge
		}
		return media.Image{}, http.StatusBadRequest, "Choose an image to upload."
	}
	if file.Size > h.maxUploadBytes {
		return media.Image{}, http.StatusRequestEntityTooLarge, tooLarge
	}

	src, err := file.Open()
	if err != nil {
		return media.Image{}, http.StatusInternalServerError, "Failed to read the uploaded image."
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return media.Image{}, http.StatusInternalServerError, "Failed to read the uploaded image."
	}
	if len(data) == 0 {
		return media.Image{}, http.StatusBadRequest, "The uploaded file is empty."
	}

	return media.Image{
		Filename:    file.Filename,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, http.StatusOK, ""
}

func (h *Handler) pageData(state *session.State) PageData {
	data := PageData{
		Title:          pageTitle,
		Accept:         acceptAttr(media.AllowedExtensions),
		HasImage:       state.HasImage(),
		ImageName:      state.ImageName,
		HasDescription: state.HasDescription(),
	}
	if data.HasImage {
		data.ImageURL = "/upload/image?v=" + strconv.FormatInt(state.UpdatedAt.UnixNano(), 10)
	}
	if data.HasDescription {
		data.DescriptionHTML = h.renderer.Markdown(state.Description)
	}
	return data
}

func (h *Handler) render(c echo.Context, status int, data PageData) error {
	return c.Render(status, pageTemplate, data)
}

// respond answers a successful action with the page, or with the session as
// JSON when the client asked for it.
func (h *Handler) respond(c echo.Context, state *session.State) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, sessionResponse(state))
	}
	return h.render(c, http.StatusOK, h.pageData(state))
}

func (h *Handler) renderError(c echo.Context, status int, state *session.State, stage, message string) error {
	if wantsJSON(c) {
		return jsonError(status, stage+"_failed", message)
	}
	data := h.pageData(state)
	data.Error = message
	data.ErrorStage = stage
	return h.render(c, status, data)
}

func (h *Handler) sessionError(err error) error {
	h.logger.Error("session unavailable", "error", err)
	return shared.InternalError("session_unavailable", "session storage unavailable")
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func jsonError(status int, code, message string) *echo.HTTPError {
	switch status {
	case http.StatusBadRequest:
		return shared.BadRequest(code, message)
	case http.StatusNotFound:
		return shared.NotFound(code, message)
	case http.StatusConflict:
		return shared.Conflict(code, message)
	case http.StatusRequestEntityTooLarge:
		return shared.RequestTooLarge(code, message)
	case http.StatusBadGateway:
		return shared.BadGateway(code, message)
	default:
		return shared.InternalError(code, message)
	}
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNoImage), errors.Is(err, shared.ErrNoDescription):
		return http.StatusConflict
	case errors.Is(err, ErrRemoteFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func remoteMessage(err error) string {
	var remoteErr *shared.RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr.Message
	}
	if errors.Is(err, shared.ErrEmptyResult) {
		return "the service returned no result"
	}
	return "the service could not be reached"
}

func describeFailure(err error) string {
	switch {
	case errors.Is(err, shared.ErrNoImage):
		return "Upload an image first."
	case errors.Is(err, ErrRemoteFailed):
		return "Failed to generate a description: " + remoteMessage(err) + "."
	default:
		return "Failed to read the uploaded image."
	}
}

func auraFailure(err error) string {
	switch {
	case errors.Is(err, shared.ErrNoDescription):
		return "Generate a description first."
	case errors.Is(err, ErrRemoteFailed):
		return "Failed to generate the aura image: " + remoteMessage(err) + "."
	default:
		return "Failed to generate the aura image."
	}
}
