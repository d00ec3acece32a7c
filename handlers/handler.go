package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/zone_expense_backend/config"
	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/models/reports"
	"github.com/mmdatafocus/zone_expense_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var errStorageNotConfigured = errors.New("file storage is not configured")

// Deps are the collaborators built in main. Redis and Store may be nil.
type Deps struct {
	DB     *gorm.DB
	Redis  *config.Redis
	Store  utils.FileStore
	Tokens *utils.TokenIssuer
	Logger *logrus.Logger
	Config config.App
}

type Handler struct {
	db       *gorm.DB
	rdb      *config.Redis
	store    utils.FileStore
	tokens   *utils.TokenIssuer
	reporter *reports.Reporter
	logger   *logrus.Logger
	cfg      config.App
}

// New wires the handlers and registers the custom binding validators.
func New(d Deps) (*Handler, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	if err := utils.RegisterValidators(v); err != nil {
		return nil, err
	}

	return &Handler{
		db:     d.DB,
		rdb:    d.Redis,
		store:  d.Store,
		tokens: d.Tokens,
		reporter: reports.NewReporter(d.DB, d.Redis, d.Logger, reports.Options{
			CacheEnabled: d.Config.EnableReportCache && d.Redis != nil,
			CacheTTL:     d.Config.ReportCacheTTL(),
			SlowMs:       d.Config.ReportSlowMs,
		}),
		logger: d.Logger,
		cfg:    d.Config,
	}, nil
}

// respondError answers typed application errors with their status and logs
// everything else as a 500.
func (h *Handler) respondError(c *gin.Context, funcName string, err error) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.Kind != utils.KindInternal {
		c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{"message": appErr.Message})
		return
	}
	config.LogError(h.logger, "handlers", funcName, c.FullPath(), nil, err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
}

func (h *Handler) respondBindError(c *gin.Context, err error) {
	if fields := utils.ProcessValidationErrors(err); fields != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "errors": fields})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
}

func principal(c *gin.Context) models.Principal {
	p, _ := models.PrincipalFromContext(c.Request.Context())
	return p
}

// readUpload returns the bytes of the multipart file in field. A missing file
// is reported as missing=true without an error.
func readUpload(c *gin.Context, field string) (data []byte, missing bool, err error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, utils.ValidationError("Invalid file upload")
	}
	if fh.Size > utils.MaxUploadSizeBytes {
		return nil, false, utils.ValidationError("file size exceeds 5MB limit")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, utils.MaxUploadSizeBytes+1))
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}

func (h *Handler) storeUpload(ctx context.Context, kind utils.UploadKind, data []byte) (string, error) {
	if h.store == nil {
		return "", errStorageNotConfigured
	}
	prepared, err := utils.PrepareUpload(h.cfg.StoragePrefix, kind, data)
	if err != nil {
		return "", err
	}
	return h.store.Upload(ctx, prepared.ObjectKey, prepared.Data, prepared.ContentType)
}

// removeStored deletes the object behind url. Failures are only logged.
func (h *Handler) removeStored(ctx context.Context, url string) {
	if h.store == nil || url == "" {
		return
	}
	key := h.store.ObjectKey(url)
	if key == "" {
		return
	}
	if err := h.store.Delete(ctx, key); err != nil {
		h.logger.WithFields(logrus.Fields{
			"field":      "removeStored",
			"object_key": key,
		}).Warn("failed to delete stored object: " + err.Error())
	}
}
