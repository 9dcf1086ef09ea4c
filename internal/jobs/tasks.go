package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/straye-as/progress-api/internal/storage"
)

const (
	// QueueReports carries report distribution tasks
	QueueReports = "reports"
	// TaskTypeReportEmail sends one rendered report document to a recipient list
	TaskTypeReportEmail = "report:email"
)

// ReportEmailPayload describes one report email. The document is read from
// object storage when the task runs.
type ReportEmailPayload struct {
	ProjectID   string   `json:"projectId"`
	ProjectName string   `json:"projectName"`
	VersionID   uint     `json:"versionId"`
	Variant     string   `json:"variant"`
	Recipients  []string `json:"recipients"`
	StorageKey  string   `json:"storageKey"`
	FileName    string   `json:"fileName"`
}

// NewReportEmailTask constructs an asynq task. The task id makes enqueueing
// the same document for the same version twice a no-op.
func NewReportEmailTask(payload ReportEmailPayload, maxRetry int) (*asynq.Task, error) {
	if len(payload.Recipients) == 0 {
		return nil, errors.New("report email has no recipients")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReportEmail, data,
		asynq.Queue(QueueReports),
		asynq.MaxRetry(maxRetry),
		asynq.TaskID(fmt.Sprintf("report-email:%d:%s", payload.VersionID, payload.Variant)),
	), nil
}

// Client submits distribution tasks to the queue
type Client struct {
	client   *asynq.Client
	maxRetry int
}

func NewClient(redisOpts asynq.RedisClientOpt, maxRetry int) *Client {
	return &Client{client: asynq.NewClient(redisOpts), maxRetry: maxRetry}
}

// EnqueueReportEmail enqueues a report email; a duplicate task is not an error
func (c *Client) EnqueueReportEmail(ctx context.Context, payload ReportEmailPayload) error {
	task, err := NewReportEmailTask(payload, c.maxRetry)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// Close releases client resources
func (c *Client) Close() error {
	return c.client.Close()
}

// ReportEmailHandler delivers report emails with the stored document attached
type ReportEmailHandler struct {
	store  storage.Storage
	mailer Mailer
	sender string
	logger *zap.Logger
}

func NewReportEmailHandler(store storage.Storage, mailer Mailer, sender string, logger *zap.Logger) *ReportEmailHandler {
	return &ReportEmailHandler{store: store, mailer: mailer, sender: sender, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract
func (h *ReportEmailHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload ReportEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode report email payload: %v: %w", err, asynq.SkipRetry)
	}
	if len(payload.Recipients) == 0 || payload.StorageKey == "" {
		return fmt.Errorf("incomplete report email payload: %w", asynq.SkipRetry)
	}

	rc, err := h.store.Download(ctx, payload.StorageKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return fmt.Errorf("report document %s missing: %w", payload.StorageKey, asynq.SkipRetry)
		}
		return err
	}
	defer rc.Close()

	doc, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read report document: %w", err)
	}

	msg := Message{
		From:    h.sender,
		To:      payload.Recipients,
		Subject: fmt.Sprintf("Daily progress report: %s", payload.ProjectName),
		Body: strings.Join([]string{
			"Hello,",
			"",
			fmt.Sprintf("Please find attached the approved daily progress report for %s.", payload.ProjectName),
			"",
			"This message was sent automatically.",
		}, "\r\n"),
		Attachments: []Attachment{{FileName: payload.FileName, ContentType: "application/pdf", Data: doc}},
	}
	if err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.Warn("report email delivery failed",
			zap.String("projectId", payload.ProjectID),
			zap.Uint("versionId", payload.VersionID),
			zap.String("variant", payload.Variant),
			zap.Error(err))
		return err
	}

	h.logger.Info("report email sent",
		zap.String("projectId", payload.ProjectID),
		zap.Uint("versionId", payload.VersionID),
		zap.String("variant", payload.Variant),
		zap.Int("recipients", len(payload.Recipients)))
	return nil
}
