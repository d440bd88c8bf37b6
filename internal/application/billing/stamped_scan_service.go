package billing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/bizdocs/backend/internal/domain/billing"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/shared/valueobject"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxScanSize caps an uploaded stamped scan at 10 MiB
const DefaultMaxScanSize int64 = 10 << 20

// ScanKeyPrefix is where stamped scans live in scan storage
const ScanKeyPrefix = "scanned_invoices/"

// scanExtensions maps the accepted sniffed content types to file extensions
var scanExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

// IsStoredScan reports whether a stamped invoice reference names an object
// in scan storage rather than an external reference
func IsStoredScan(ref string) bool {
	return strings.HasPrefix(ref, ScanKeyPrefix)
}

// StampedScanService uploads and serves the scanned, stamped copies of invoices
type StampedScanService struct {
	serviceCore
	invoices billing.InvoiceRepository
	receipts billing.ReceiptRepository
	storage  ScanStorage
	maxSize  int64
}

// NewStampedScanService creates a new StampedScanService. A maxSize of zero
// or less falls back to DefaultMaxScanSize.
func NewStampedScanService(
	invoices billing.InvoiceRepository,
	receipts billing.ReceiptRepository,
	storage ScanStorage,
	tx TxManager,
	maxSize int64,
	opts ...ServiceOption,
) *StampedScanService {
	if maxSize <= 0 {
		maxSize = DefaultMaxScanSize
	}
	return &StampedScanService{
		serviceCore: newServiceCore(tx, opts),
		invoices:    invoices,
		receipts:    receipts,
		storage:     storage,
		maxSize:     maxSize,
	}
}

// Upload stores a scan and points the invoice at it. A scan the invoice
// referenced before is removed once the new one is committed.
func (s *StampedScanService) Upload(ctx context.Context, id uuid.UUID, upload ScanUpload) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "upload_stamped")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, id.String())

	inv, err := loadInvoice(ctx, s.invoices, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	data, contentType, err := s.readScan(upload)
	if err != nil {
		return nil, err
	}

	key := path.Join(ScanKeyPrefix, inv.InvoiceNumber, uuid.NewString()+scanExtensions[contentType])
	if err := s.storage.Put(ctx, key, data, contentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("store stamped scan: %w", err)
	}

	var (
		previous *string
		paid     valueobject.Money
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if inv, err = loadInvoice(ctx, s.invoices, id); err != nil {
			return err
		}
		if paid, err = s.receipts.SumPaidByInvoice(ctx, id); err != nil {
			return err
		}
		previous = inv.StampedInvoice
		inv.SetStampedInvoice(key)
		return saveInvoice(ctx, s.invoices, inv, paid)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.discard(ctx, key)
		return nil, err
	}

	s.log(ctx).Info("stamped scan uploaded",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)),
	)
	if previous != nil && IsStoredScan(*previous) {
		s.discard(ctx, *previous)
	}
	resp := ToInvoiceResponse(inv, paid)
	return &resp, nil
}

// Link returns where the stamped copy of an invoice can be fetched
func (s *StampedScanService) Link(ctx context.Context, id uuid.UUID) (*StampedScanLink, error) {
	inv, err := loadInvoice(ctx, s.invoices, id)
	if err != nil {
		return nil, err
	}
	if inv.StampedInvoice == nil {
		return nil, notFound("Stamped invoice")
	}

	ref := *inv.StampedInvoice
	link := &StampedScanLink{InvoiceNumber: inv.InvoiceNumber, StampedInvoice: ref, URL: ref}
	if !IsStoredScan(ref) {
		return link, nil
	}
	url, expiresAt, err := s.storage.DownloadURL(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("presign stamped scan: %w", err)
	}
	link.URL = url
	link.ExpiresAt = &expiresAt
	return link, nil
}

// Remove clears the stamped copy of an invoice and deletes a stored scan
func (s *StampedScanService) Remove(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	var (
		inv      *billing.Invoice
		previous *string
		paid     valueobject.Money
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if inv, err = loadInvoice(ctx, s.invoices, id); err != nil {
			return err
		}
		if inv.StampedInvoice == nil {
			return notFound("Stamped invoice")
		}
		if paid, err = s.receipts.SumPaidByInvoice(ctx, id); err != nil {
			return err
		}
		previous = inv.StampedInvoice
		inv.SetStampedInvoice("")
		return saveInvoice(ctx, s.invoices, inv, paid)
	})
	if err != nil {
		return nil, err
	}
	if IsStoredScan(*previous) {
		s.discard(ctx, *previous)
	}
	resp := ToInvoiceResponse(inv, paid)
	return &resp, nil
}

// readScan reads at most maxSize bytes and sniffs the content type; the
// name the client gave the file is not trusted
func (s *StampedScanService) readScan(upload ScanUpload) ([]byte, string, error) {
	if upload.Body == nil {
		return nil, "", shared.NewValidationError("file", "This field is required")
	}
	data, err := io.ReadAll(io.LimitReader(upload.Body, s.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read stamped scan: %w", err)
	}
	switch {
	case len(data) == 0:
		return nil, "", shared.NewValidationError("file", "The submitted file is empty")
	case int64(len(data)) > s.maxSize:
		return nil, "", shared.NewValidationError("file", fmt.Sprintf("Must not exceed %d bytes", s.maxSize))
	}

	contentType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if _, ok := scanExtensions[contentType]; !ok {
		return nil, "", shared.NewValidationError("file", "Must be a PDF, PNG or JPEG file")
	}
	return data, contentType, nil
}

// discard removes an object that is no longer referenced. Failures leave an
// orphan behind and are only logged.
func (s *StampedScanService) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log(ctx).Warn("failed to delete stamped scan", zap.String("key", key), zap.Error(err))
	}
}

// ScanCleanupHandler deletes the stored scan of an invoice once the invoice
// itself is deleted
type ScanCleanupHandler struct {
	storage ScanStorage
	logger  *zap.Logger
}

// NewScanCleanupHandler creates a new ScanCleanupHandler
func NewScanCleanupHandler(storage ScanStorage, l *zap.Logger) *ScanCleanupHandler {
	return &ScanCleanupHandler{storage: storage, logger: l.Named("scan_cleanup")}
}

// EventTypes returns the event types this handler is interested in
func (h *ScanCleanupHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoiceDeleted}
}

// Handle deletes the scan referenced by a deleted invoice
func (h *ScanCleanupHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*billing.InvoiceDeletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	if !IsStoredScan(e.StampedInvoice) {
		return nil
	}
	if err := h.storage.Delete(ctx, e.StampedInvoice); err != nil {
		return fmt.Errorf("delete scan of %s: %w", e.InvoiceNumber, err)
	}
	h.logger.Info("stamped scan removed",
		zap.String("invoice_number", e.InvoiceNumber),
		zap.String("key", e.StampedInvoice),
	)
	return nil
}

var _ shared.EventHandler = (*ScanCleanupHandler)(nil)
