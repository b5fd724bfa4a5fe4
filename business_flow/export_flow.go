// Package businessflow contains the core business logic for collection exports
package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/app/services"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/repository"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/arashpm/Kitsune-Vault/viewmodel"
	"github.com/xuri/excelize/v2"
)

// ExportFlow renders the collection to downloadable files. The row set is
// either the session's current selection or the full filtered view; the CSV
// and XLSX variants always share the same columns.
type ExportFlow interface {
	ExportCSV(ctx context.Context, req *dto.ExportRequest, sessionID string, userID uint, metadata *ClientMetadata) (string, []byte, error)
	ExportXLSX(ctx context.Context, req *dto.ExportRequest, sessionID string, userID uint, metadata *ClientMetadata) (string, []byte, error)
}

// ExportFlowImpl implements the export business flow
type ExportFlowImpl struct {
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditLogRepository
	selections  services.SelectionStore
}

// NewExportFlow creates a new export flow instance
func NewExportFlow(
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditLogRepository,
	selections services.SelectionStore,
) ExportFlow {
	return &ExportFlowImpl{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		selections:  selections,
	}
}

var exportHeader = []string{
	"id",
	"username",
	"platform",
	"followers",
	"manager",
	"status",
	"email",
}

func exportRecord(a *models.Account) []string {
	return []string{
		a.UUID.String(),
		a.Username,
		a.Platform.DisplayName(),
		strconv.FormatInt(a.Followers, 10),
		a.ManagerOrEmpty(),
		a.Status.String(),
		a.EmailOrEmpty(),
	}
}

// ExportCSV renders the export rows as RFC 4180 CSV. Fields containing
// commas or quotes come out quoted, so a username like "a,b" survives the
// round trip intact.
func (f *ExportFlowImpl) ExportCSV(ctx context.Context, req *dto.ExportRequest, sessionID string, userID uint, metadata *ClientMetadata) (string, []byte, error) {
	rows, err := f.exportRows(ctx, req, sessionID)
	if err != nil {
		return "", nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(exportHeader); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV header", err)
	}
	for _, a := range rows {
		if err := w.Write(exportRecord(a)); err != nil {
			return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to flush CSV output", err)
	}

	f.recordExportAudit(ctx, userID, "csv", len(rows), metadata)

	filename := fmt.Sprintf("accounts_%s.csv", utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// ExportXLSX renders the same rows as a single-sheet workbook
func (f *ExportFlowImpl) ExportXLSX(ctx context.Context, req *dto.ExportRequest, sessionID string, userID uint, metadata *ClientMetadata) (string, []byte, error) {
	rows, err := f.exportRows(ctx, req, sessionID)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Accounts"
	xl.SetSheetName(xl.GetSheetName(0), sheet)
	_ = xl.SetSheetRow(sheet, "A1", &exportHeader)

	for i, a := range rows {
		record := exportRecord(a)
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write workbook", err)
	}

	f.recordExportAudit(ctx, userID, "xlsx", len(rows), metadata)

	filename := fmt.Sprintf("accounts_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// exportRows resolves the rows to export. When the request targets the
// selection, only selected rows that survive the current view filters are
// included; view order is preserved either way.
func (f *ExportFlowImpl) exportRows(ctx context.Context, req *dto.ExportRequest, sessionID string) ([]*models.Account, error) {
	state, _, _, err := viewStateFromRequest(&req.ListAccountsRequest)
	if err != nil {
		return nil, err
	}

	collection, err := f.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("COLLECTION_FETCH_FAILED", "Failed to fetch the collection", ErrStoreUnavailable)
	}

	view := viewmodel.View(collection, state)

	if req.Selected {
		members, err := f.selections.Members(ctx, sessionID)
		if err != nil {
			return nil, NewBusinessError("SELECTION_FETCH_FAILED", "Failed to fetch selection", ErrCacheNotAvailable)
		}
		filtered := make([]*models.Account, 0, len(members))
		for _, a := range view {
			if members[a.UUID.String()] {
				filtered = append(filtered, a)
			}
		}
		view = filtered
	}

	if len(view) == 0 {
		return nil, NewBusinessError("NOTHING_TO_EXPORT", "No accounts to export", ErrNothingToExport)
	}
	return view, nil
}

func (f *ExportFlowImpl) recordExportAudit(ctx context.Context, userID uint, format string, count int, metadata *ClientMetadata) {
	description := fmt.Sprintf("Exported %d accounts as %s", count, format)
	entry := &models.AuditLog{
		UserID:      &userID,
		Action:      models.AuditActionExportGenerated,
		Description: &description,
		Success:     utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			entry.UserAgent = &metadata.UserAgent
		}
		if metadata.RequestID != "" {
			entry.RequestID = &metadata.RequestID
		}
	}
	_ = f.auditRepo.Save(ctx, entry)
}
